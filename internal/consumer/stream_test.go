package consumer

import (
	"testing"
)

func TestDecodeAction(t *testing.T) {
	values := map[string]interface{}{
		"data": `{"gameId":"0022400101","actionNumber":7,"clock":"PT11:42.00","period":1,"description":"J. Tatum 26' 3PT Jump Shot","teamTricode":"BOS"}`,
	}

	action, err := decodeAction(values)
	if err != nil {
		t.Fatalf("decodeAction() error = %v", err)
	}

	row := action.RawRow()
	if row.GameID != "0022400101" || row.Index != 7 {
		t.Errorf("RawRow() = %+v", row)
	}
	if row.Fields["period"] != "1" || row.Fields["teamTricode"] != "BOS" {
		t.Errorf("RawRow().Fields = %v", row.Fields)
	}
}

func TestDecodeAction_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"missing data", map[string]interface{}{"payload": "{}"}},
		{"bad json", map[string]interface{}{"data": "{not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeAction(tt.values); err == nil {
				t.Error("decodeAction() error = nil, want error")
			}
		})
	}
}
