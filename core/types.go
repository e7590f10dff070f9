package core

import (
	"github.com/shrek82/jmapper/pool"
)

// Direction classifies how a parameter value flows between caller and database.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
	DirectionInputOutput
	DirectionReturnValue
)

func (d Direction) String() string {
	switch d {
	case DirectionOutput:
		return "Output"
	case DirectionInputOutput:
		return "InputOutput"
	case DirectionReturnValue:
		return "ReturnValue"
	default:
		return "Input"
	}
}

func (d Direction) driver() pool.Direction {
	switch d {
	case DirectionOutput:
		return pool.DirectionOutput
	case DirectionInputOutput:
		return pool.DirectionInputOutput
	case DirectionReturnValue:
		return pool.DirectionReturnValue
	default:
		return pool.DirectionInput
	}
}

// directionFromDriver reads a driver direction back. InputOutput reports as
// Output and anything unknown, ReturnValue included, as Input.
func directionFromDriver(d pool.Direction) Direction {
	switch d {
	case pool.DirectionOutput, pool.DirectionInputOutput:
		return DirectionOutput
	default:
		return DirectionInput
	}
}

// DataType is the logical type declared for a parameter.
type DataType int

const (
	DataTypeAnsiString DataType = iota
	DataTypeAnsiStringFixedLength
	DataTypeBinary
	DataTypeBoolean
	DataTypeByte
	DataTypeChar
	DataTypeCurrency
	DataTypeDate
	DataTypeDateTime
	DataTypeDateTime2
	DataTypeDateTimeOffset
	DataTypeDecimal
	DataTypeDouble
	DataTypeGuid
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeObject
	DataTypeSByte
	DataTypeSingle
	DataTypeString
	DataTypeStringFixedLength
	DataTypeTime
	DataTypeUInt16
	DataTypeUInt32
	DataTypeUInt64
	DataTypeVarChar
	DataTypeVarNumeric
	DataTypeXml
)

var dataTypeNames = map[DataType]string{
	DataTypeAnsiString:            "AnsiString",
	DataTypeAnsiStringFixedLength: "AnsiStringFixedLength",
	DataTypeBinary:                "Binary",
	DataTypeBoolean:               "Boolean",
	DataTypeByte:                  "Byte",
	DataTypeChar:                  "Char",
	DataTypeCurrency:              "Currency",
	DataTypeDate:                  "Date",
	DataTypeDateTime:              "DateTime",
	DataTypeDateTime2:             "DateTime2",
	DataTypeDateTimeOffset:        "DateTimeOffset",
	DataTypeDecimal:               "Decimal",
	DataTypeDouble:                "Double",
	DataTypeGuid:                  "Guid",
	DataTypeInt16:                 "Int16",
	DataTypeInt32:                 "Int32",
	DataTypeInt64:                 "Int64",
	DataTypeObject:                "Object",
	DataTypeSByte:                 "SByte",
	DataTypeSingle:                "Single",
	DataTypeString:                "String",
	DataTypeStringFixedLength:     "StringFixedLength",
	DataTypeTime:                  "Time",
	DataTypeUInt16:                "UInt16",
	DataTypeUInt32:                "UInt32",
	DataTypeUInt64:                "UInt64",
	DataTypeVarChar:               "VarChar",
	DataTypeVarNumeric:            "VarNumeric",
	DataTypeXml:                   "Xml",
}

func (t DataType) String() string {
	if s, ok := dataTypeNames[t]; ok {
		return s
	}
	return "Object"
}

// ParseDataType looks a type up by its name, ignoring case.
func ParseDataType(name string) (DataType, bool) {
	for t, s := range dataTypeNames {
		if equalFold(s, name) {
			return t, true
		}
	}
	return DataTypeObject, false
}

// driver translates to the driver type. VarChar and Char are the ANSI
// strings; unknown values become Object.
func (t DataType) driver() pool.DbType {
	switch t {
	case DataTypeAnsiString, DataTypeVarChar:
		return pool.DbTypeAnsiString
	case DataTypeAnsiStringFixedLength, DataTypeChar:
		return pool.DbTypeAnsiStringFixedLength
	case DataTypeBinary:
		return pool.DbTypeBinary
	case DataTypeBoolean:
		return pool.DbTypeBoolean
	case DataTypeByte:
		return pool.DbTypeByte
	case DataTypeCurrency:
		return pool.DbTypeCurrency
	case DataTypeDate:
		return pool.DbTypeDate
	case DataTypeDateTime:
		return pool.DbTypeDateTime
	case DataTypeDateTime2:
		return pool.DbTypeDateTime2
	case DataTypeDateTimeOffset:
		return pool.DbTypeDateTimeOffset
	case DataTypeDecimal:
		return pool.DbTypeDecimal
	case DataTypeDouble:
		return pool.DbTypeDouble
	case DataTypeGuid:
		return pool.DbTypeGuid
	case DataTypeInt16:
		return pool.DbTypeInt16
	case DataTypeInt32:
		return pool.DbTypeInt32
	case DataTypeInt64:
		return pool.DbTypeInt64
	case DataTypeSByte:
		return pool.DbTypeSByte
	case DataTypeSingle:
		return pool.DbTypeSingle
	case DataTypeString:
		return pool.DbTypeString
	case DataTypeStringFixedLength:
		return pool.DbTypeStringFixedLength
	case DataTypeTime:
		return pool.DbTypeTime
	case DataTypeUInt16:
		return pool.DbTypeUInt16
	case DataTypeUInt32:
		return pool.DbTypeUInt32
	case DataTypeUInt64:
		return pool.DbTypeUInt64
	case DataTypeVarNumeric:
		return pool.DbTypeVarNumeric
	case DataTypeXml:
		return pool.DbTypeXml
	default:
		return pool.DbTypeObject
	}
}
