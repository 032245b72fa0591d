package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Flag is a boolean persisted as an INTEGER 0/1 column.
type Flag bool

func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case int64:
		*f = v != 0
	case int32:
		*f = v != 0
	case bool:
		*f = Flag(v)
	case []byte:
		return f.parseFromString(string(v))
	case string:
		return f.parseFromString(v)
	default:
		return fmt.Errorf("Flag: unsupported Scan type %T", src)
	}
	return nil
}

func (f Flag) Value() (driver.Value, error) {
	if f {
		return int64(1), nil
	}
	return int64(0), nil
}

// Bool returns the plain value.
func (f Flag) Bool() bool {
	return bool(f)
}

func (f *Flag) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = n != 0
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("Flag: invalid value %q", s)
	}
	*f = Flag(b)
	return nil
}
