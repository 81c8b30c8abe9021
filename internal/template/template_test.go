package template

import (
	"errors"
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		tmpl        string
		params      map[string]string
		want        string
		wantMissing string
	}{
		{
			name:   "basic substitution",
			tmpl:   "/bin/ls {{param1}} {{param2}}",
			params: map[string]string{"param1": "-al", "param2": "/tmp"},
			want:   "/bin/ls -al /tmp",
		},
		{
			name:   "no placeholders",
			tmpl:   "/usr/local/bin/deploy.sh",
			params: nil,
			want:   "/usr/local/bin/deploy.sh",
		},
		{
			name:   "extra parameters ignored",
			tmpl:   "/bin/ls {{param1}} {{param2}}",
			params: map[string]string{"param1": "-al", "param2": "/tmp", "param3": "ignored"},
			want:   "/bin/ls -al /tmp",
		},
		{
			name:        "missing parameter fails closed",
			tmpl:        "/bin/ls {{param1}} {{param2}}",
			params:      map[string]string{"param1": "-al"},
			wantMissing: "param2",
		},
		{
			name:   "whitespace inside placeholder",
			tmpl:   "echo {{ message }}",
			params: map[string]string{"message": "hello"},
			want:   "echo hello",
		},
		{
			name:   "repeated placeholder",
			tmpl:   "cp {{file}} {{file}}.bak",
			params: map[string]string{"file": "/etc/hosts"},
			want:   "cp /etc/hosts /etc/hosts.bak",
		},
		{
			name:   "value substituted verbatim",
			tmpl:   "sh -c {{cmd}}",
			params: map[string]string{"cmd": "echo a; rm -rf b"},
			want:   "sh -c echo a; rm -rf b",
		},
		{
			name:   "placeholder in value is not expanded",
			tmpl:   "echo {{a}}",
			params: map[string]string{"a": "{{b}}", "b": "nope"},
			want:   "echo {{b}}",
		},
		{
			name:   "empty value is a supplied value",
			tmpl:   "run {{flag}}",
			params: map[string]string{"flag": ""},
			want:   "run ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.params)
			if tt.wantMissing != "" {
				var missing *MissingParamError
				if !errors.As(err, &missing) {
					t.Fatalf("Render() error = %v, want MissingParamError", err)
				}
				if missing.Param != tt.wantMissing {
					t.Errorf("missing param = %q, want %q", missing.Param, tt.wantMissing)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderIdempotent(t *testing.T) {
	tmpl := "/usr/bin/rsync {{src}} {{dst}}"
	params := map[string]string{"src": "/data/a", "dst": "backup:/data/a"}

	a, err := Render(tmpl, params)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b, err := Render(tmpl, params)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if a != b {
		t.Errorf("rendering is not deterministic: %q vs %q", a, b)
	}
}

func TestParams(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want []string
	}{
		{
			name: "ordered unique names",
			tmpl: "cmd {{b}} {{a}} {{b}}",
			want: []string{"b", "a"},
		},
		{
			name: "no placeholders",
			tmpl: "cmd",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Params(tt.tmpl); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Params() = %v, want %v", got, tt.want)
			}
		})
	}
}
