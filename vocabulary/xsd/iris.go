// Package xsd provides XML Schema datatype IRIs and the datatype categories
// used when ordering literal values.
package xsd

// Namespace is the base IRI for XML Schema datatypes.
const Namespace = "http://www.w3.org/2001/XMLSchema#"

// String and text datatypes.
const (
	String           = Namespace + "string"
	NormalizedString = Namespace + "normalizedString"
	Token            = Namespace + "token"
	AnyURI           = Namespace + "anyURI"
)

// Boolean is the boolean datatype.
const Boolean = Namespace + "boolean"

// Numeric datatypes.
const (
	Decimal            = Namespace + "decimal"
	Integer            = Namespace + "integer"
	Double             = Namespace + "double"
	Float              = Namespace + "float"
	Long               = Namespace + "long"
	Int                = Namespace + "int"
	Short              = Namespace + "short"
	Byte               = Namespace + "byte"
	NonNegativeInteger = Namespace + "nonNegativeInteger"
	NonPositiveInteger = Namespace + "nonPositiveInteger"
	PositiveInteger    = Namespace + "positiveInteger"
	NegativeInteger    = Namespace + "negativeInteger"
	UnsignedLong       = Namespace + "unsignedLong"
	UnsignedInt        = Namespace + "unsignedInt"
	UnsignedShort      = Namespace + "unsignedShort"
	UnsignedByte       = Namespace + "unsignedByte"
)

// Temporal datatypes.
const (
	DateTime      = Namespace + "dateTime"
	DateTimeStamp = Namespace + "dateTimeStamp"
	Date          = Namespace + "date"
	Time          = Namespace + "time"
	GYear         = Namespace + "gYear"
	GYearMonth    = Namespace + "gYearMonth"
)

var numeric = map[string]bool{
	Decimal: true, Integer: true, Double: true, Float: true,
	Long: true, Int: true, Short: true, Byte: true,
	NonNegativeInteger: true, NonPositiveInteger: true,
	PositiveInteger: true, NegativeInteger: true,
	UnsignedLong: true, UnsignedInt: true, UnsignedShort: true, UnsignedByte: true,
}

var temporal = map[string]bool{
	DateTime: true, DateTimeStamp: true, Date: true, Time: true,
	GYear: true, GYearMonth: true,
}

// IsNumeric reports whether the datatype IRI denotes a numeric type.
func IsNumeric(datatype string) bool { return numeric[datatype] }

// IsTemporal reports whether the datatype IRI denotes a date or time type.
func IsTemporal(datatype string) bool { return temporal[datatype] }

// IsBoolean reports whether the datatype IRI is xsd:boolean.
func IsBoolean(datatype string) bool { return datatype == Boolean }
