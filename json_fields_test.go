package rentroll

import "testing"

func TestJSONObject(t *testing.T) {
	tests := []struct {
		name string
		obj  jsonObject
		want string
	}{
		{"empty", nil, `{}`},
		{"order is kept", jsonObject{field("z", 1), field("a", "x")}, `{"z":1,"a":"x"}`},
		{
			name: "empty optional fields are skipped",
			obj: jsonObject{
				optional("none", ""),
				field("zero", 0),
				optional("map", map[string]Money{}),
				optional("nil", []string(nil)),
				optional("flag", true),
				optional("off", false),
			},
			want: `{"zero":0,"flag":true}`,
		},
		{"only empty optionals", jsonObject{optional("a", ""), optional("b", 0)}, `{}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.obj.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestJSONObject_Error(t *testing.T) {
	if _, err := (jsonObject{field("ch", make(chan int))}).MarshalJSON(); err == nil {
		t.Error("MarshalJSON() of a channel succeeded")
	}
}
