package core

import (
	"reflect"
	"testing"
)

func TestExtractEmailFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want EmailFields
	}{
		{
			name: "long date",
			in:   "Gmail - Proposta\n\nProposta comercial\n1 mensagem\nJoão Lima <joao@ex.com> 12 de junho de 2024 às 09:30\nPara: vendas@ex.com\nSegue a proposta revisada.\n12/06/2024, 09:31 Gmail - Proposta",
			want: EmailFields{
				From:    "João Lima <joao@ex.com>",
				To:      "vendas@ex.com",
				Date:    "12 de junho de 2024 às 09:30",
				Subject: "Proposta comercial",
				Body:    "Segue a proposta revisada.",
			},
		},
		{
			name: "short date",
			in:   "\nParabéns\n1 mensagem\nMaria <m@ex.com> 5/1/2025, 14:02\nPara: time@ex.com\nParabéns a todos!",
			want: EmailFields{
				From:    "Maria <m@ex.com>",
				To:      "time@ex.com",
				Date:    "5/1/2025, 14:02",
				Subject: "Parabéns",
				Body:    "Parabéns a todos!",
			},
		},
		{
			name: "unknown layout",
			in:   "apenas um texto qualquer",
			want: EmailFields{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractEmailFields(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractEmailFields() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
