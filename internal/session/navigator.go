package session

// Navigator abstracts the host navigation stack so the session layer can
// drive routing without knowing about any UI toolkit.
type Navigator interface {
	// Push adds route on top of the stack.
	Push(route string)
	// Replace swaps the current top of the stack for route.
	Replace(route string)
	// Back pops the current route.
	Back()
}
