package flagx

import (
	"reflect"
	"testing"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", ":1200", "-x", "ignored"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":1200"},
		},
		{
			name:    "equals form",
			args:    []string{"--addr=:1200", "--other=1"},
			allowed: []string{"--addr"},
			want:    []string{"--addr=:1200"},
		},
		{
			name:    "flag without value followed by flag",
			args:    []string{"-v", "-a", ":1200"},
			allowed: []string{"-v", "-a"},
			want:    []string{"-v", "-a", ":1200"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", ":1200"},
			allowed: []string{"-b"},
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterArgs(tc.args, tc.allowed)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("FilterArgs() = %v, want %v", got, tc.want)
			}
		})
	}
}
