package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one result record as an ordered column-name to scalar mapping. JSON
// output preserves the column order of the statement that produced it.
type Row struct {
	columns []string
	values  map[string]any
}

func NewRow(columns []string, values map[string]any) Row {
	return Row{columns: columns, values: values}
}

func (r Row) Columns() []string {
	return r.columns
}

func (r Row) Value(column string) any {
	return r.values[column]
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, column := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[column])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds the row with columns in document order, so a decoded
// row renders the same way the producing statement laid it out.
func (r *Row) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if _, err := decoder.Token(); err != nil {
		return err
	}

	r.columns = nil
	r.values = map[string]any{}
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyToken)
		}
		var value any
		if err := decoder.Decode(&value); err != nil {
			return err
		}
		r.columns = append(r.columns, key)
		r.values[key] = value
	}
	_, err := decoder.Token()
	return err
}
