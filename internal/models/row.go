package models

// Column is one column of the persisted report row. The names are fixed by the
// spreadsheet consumers and must not change.
type Column string

const (
	ColUserID       Column = "USER_ID"
	ColDate         Column = "FECHA"
	ColTime         Column = "HORA"
	ColPartner      Column = "PARTNER"
	ColCrew         Column = "CUADRILLA"
	ColTicket       Column = "TICKET"
	ColDocument     Column = "DNI"
	ColClient       Column = "NOMBRE_CLIENTE"
	ColNode         Column = "NODO"
	ColBoxCode      Column = "CODIGO_CAJA"
	ColPhotoBox     Column = "FOTO_CAJA"
	ColPhotoBoxOpen Column = "FOTO_CAJA_ABIERTA"
	ColPhotoMeasure Column = "FOTO_MEDICION"
	ColLat          Column = "LAT_CAJA"
	ColLng          Column = "LNG_CAJA"
	ColRegion       Column = "DEPARTAMENTO"
	ColSubregion    Column = "PROVINCIA"
	ColLocality     Column = "DISTRITO"
	ColObservation  Column = "OBS"
)

// Columns is the fixed persisted row layout, in order.
var Columns = []Column{
	ColUserID, ColDate, ColTime, ColPartner, ColCrew, ColTicket, ColDocument,
	ColClient, ColNode, ColBoxCode, ColPhotoBox, ColPhotoBoxOpen, ColPhotoMeasure,
	ColLat, ColLng, ColRegion, ColSubregion, ColLocality, ColObservation,
}

// HeaderRow returns the column names as a string slice for header writes.
func HeaderRow() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = string(c)
	}
	return out
}

// BuildRow assembles the persisted row from a field map. Missing fields become
// empty strings; the result always has exactly len(Columns) values.
func BuildRow(fields map[Column]string) []string {
	row := make([]string, len(Columns))
	for i, c := range Columns {
		row[i] = fields[c]
	}
	return row
}

// NormalizeRow pads or truncates an arbitrary row to the fixed column count.
func NormalizeRow(row []string) []string {
	out := make([]string, len(Columns))
	copy(out, row)
	return out
}

// RowsEqual reports whether two rows are identical after normalization.
// Used for previous-row duplicate suppression in the spreadsheet backends.
func RowsEqual(a, b []string) bool {
	na, nb := NormalizeRow(a), NormalizeRow(b)
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}
