package input

import "fmt"

// MalformedInputError identifies the workbook cell that could not be used
type MalformedInputError struct {
	Sheet string
	Row   int    // 1-based worksheet row, 0 when the problem is not tied to a row
	Field string // column name, e.g. "position"
	Value string // offending cell text, if any
	Err   error
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("sheet %q row %d, %s %q: %v", e.Sheet, e.Row, e.Field, e.Value, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("sheet %q row %d: %v", e.Sheet, e.Row, e.Err)
	case e.Field != "":
		return fmt.Sprintf("sheet %q, %s: %v", e.Sheet, e.Field, e.Err)
	}
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

func malformed(sheet string, row int, field, value string, format string, args ...any) *MalformedInputError {
	return &MalformedInputError{
		Sheet: sheet,
		Row:   row,
		Field: field,
		Value: value,
		Err:   fmt.Errorf(format, args...),
	}
}
