//go:build !windows

package backend

// NewWindows reports ErrUnavailable outside Windows.
func NewWindows() (Backend, error) {
	return nil, ErrUnavailable
}
