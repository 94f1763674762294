package imageio

import "fmt"

// DecodeError indicates that the input bytes could not be decoded as a
// supported raster format. It is not recoverable.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("imageio: no se pudo decodificar la imagen: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidImageError indicates a decoded image that fails the structural
// invariants (empty or degenerate dimensions). It is not recoverable.
type InvalidImageError struct {
	Reason string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("imageio: imagen no válida: %s", e.Reason)
}
