package tmsreader

// ColumnKind identifies the primitive type a raw column decodes to.
type ColumnKind int

const (
	KindUint ColumnKind = iota
	KindTimestamp
	KindInt
	KindFloat
)

// Column declares one position of the raw record layout.
type Column struct {
	Name string
	Kind ColumnKind
}

// Columns is the fixed layout of a TMS-4 export line: nine `;`-separated
// positional fields, no header row.
// File format: https://tomst.com/web/en/systems/tms/software/
var Columns = [9]Column{
	{"measurement_id", KindUint},
	{"timestamp", KindTimestamp},
	{"time_zone", KindInt},
	{"t1", KindFloat},
	{"t2", KindFloat},
	{"t3", KindFloat},
	{"soilmoist_count", KindUint},
	{"shake", KindUint},
	{"err_flag", KindUint},
}

// NumColumns is the required field count of every data line.
const NumColumns = len(Columns)
