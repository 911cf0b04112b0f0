package proto

import "testing"

func TestCloseCodeName(t *testing.T) {
	cases := []struct {
		code CloseCode
		want string
	}{
		{CloseNormalClosure, "NORMAL_CLOSURE"},
		{CloseAbnormalClosure, "ABNORMAL_CLOSURE"},
		{1004, "RFC_RESERVED"},
		{3500, "IANA_RESERVED"},
		{4500, "PRIVATE_RESERVED"},
		{200, "INVALID_CODE"},
		{60000, "INVALID_CODE"},
	}
	for _, tc := range cases {
		if got := tc.code.Name(); got != tc.want {
			t.Errorf("CloseCode(%d).Name() = %q, want %q", tc.code, got, tc.want)
		}
	}
}
