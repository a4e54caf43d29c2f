package ptrutil

// ToPtr returns a pointer to a copy of v. Handy for the pointer-typed
// openrtb2 fields that distinguish zero from absent.
func ToPtr[T any](v T) *T {
	return &v
}
