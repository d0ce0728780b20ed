//go:build !unix

package watch

func isFatal(error) bool {
	return false
}
