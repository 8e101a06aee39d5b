package ports

// Listener is an intake that accepts emails from the outside world
type Listener interface {
	// Start starts accepting emails
	Start() error

	// Stop stops accepting emails
	Stop() error
}
