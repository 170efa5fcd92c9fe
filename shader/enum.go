package shader

import "fmt"

// enumName returns the text form of v, or a numeric fallback.
func enumName[T ~uint8 | ~uint16](names map[T]string, v T) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", v)
}

// parseEnum looks text up in names. The empty string decodes to the zero value.
func parseEnum[T ~uint8 | ~uint16](kind string, names map[T]string, text string) (T, error) {
	if text == "" {
		return 0, nil
	}
	for v, s := range names {
		if s == text {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, text)
}
