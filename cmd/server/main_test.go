package main

import "testing"

func TestParsePort(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{arg: "8000", want: 8000},
		{arg: "1", want: 1},
		{arg: "0", wantErr: true},
		{arg: "-5", wantErr: true},
		{arg: "70000", wantErr: true},
		{arg: "http", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePort(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePort(%q) = %d, want error", tt.arg, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("parsePort(%q) = %d, %v; want %d", tt.arg, got, err, tt.want)
			}
		})
	}
}
