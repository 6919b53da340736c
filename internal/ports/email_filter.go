package ports

// EmailFilter is an intake front-end feeding addresses to the classifier
type EmailFilter interface {
	// Start starts accepting input
	Start() error

	// Stop stops accepting input and releases listeners
	Stop() error
}
