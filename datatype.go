package quadmosaic

import (
	"fmt"
	"strings"
)

// DataType is a GDAL pixel data type name, as accepted by gdal_translate -ot
type DataType string

const (
	Byte     DataType = "Byte"
	Int16    DataType = "Int16"
	UInt16   DataType = "UInt16"
	UInt32   DataType = "UInt32"
	Int32    DataType = "Int32"
	Float32  DataType = "Float32"
	Float64  DataType = "Float64"
	CInt16   DataType = "CInt16"
	CInt32   DataType = "CInt32"
	CFloat32 DataType = "CFloat32"
	CFloat64 DataType = "CFloat64"
)

// DataTypes lists the accepted output data types, in the order they are
// documented in the command line help
var DataTypes = []DataType{
	Byte, Int16, UInt16, UInt32, Int32, Float32, Float64,
	CInt16, CInt32, CFloat32, CFloat64,
}

type ErrInvalidOption struct {
	msg string
}

func (err ErrInvalidOption) Error() string {
	return err.msg
}

// ParseDataType returns the DataType named s. Names are case sensitive.
func ParseDataType(s string) (DataType, error) {
	for _, dt := range DataTypes {
		if string(dt) == s {
			return dt, nil
		}
	}
	return "", ErrInvalidOption{fmt.Sprintf("invalid data type %q, must be one of %s", s, DataTypeNames())}
}

// DataTypeNames returns the accepted data types joined with "/"
func DataTypeNames() string {
	names := make([]string, len(DataTypes))
	for i, dt := range DataTypes {
		names[i] = string(dt)
	}
	return strings.Join(names, "/")
}

func (dt DataType) String() string {
	return string(dt)
}

// IsInteger reports whether dt holds real integer samples
func (dt DataType) IsInteger() bool {
	switch dt {
	case Byte, Int16, UInt16, UInt32, Int32:
		return true
	}
	return false
}

// IsComplex reports whether dt holds complex samples
func (dt DataType) IsComplex() bool {
	switch dt {
	case CInt16, CInt32, CFloat32, CFloat64:
		return true
	}
	return false
}
