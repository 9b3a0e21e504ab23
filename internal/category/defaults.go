package category

// DefaultNames returns the built-in category list.
func DefaultNames() []string {
	return []string{"Food", "Home", "Work", "Fun", "Misc"}
}

// Default returns a Service over DefaultNames.
func Default() *Service {
	return NewService(DefaultNames())
}
