package validate

import "testing"

func TestCNP(t *testing.T) {
	tests := []struct {
		name string
		cnp  string
		want bool
	}{
		{name: "ровно 13 цифр", cnp: "1234567890123", want: true},
		{name: "слишком короткий", cnp: "123", want: false},
		{name: "14 цифр — слишком длинный", cnp: "12345678901234", want: false},
		{name: "12 цифр", cnp: "123456789012", want: false},
		{name: "буквы внутри", cnp: "12345678901ab", want: false},
		{name: "пустая строка", cnp: "", want: false},
		{name: "13 цифр с пробелом", cnp: " 1234567890123", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CNP(tt.cnp); got != tt.want {
				t.Errorf("CNP(%q) = %v, хотели %v", tt.cnp, got, tt.want)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "8 символов со спецсимволом", password: "abcdefg!", want: true},
		{name: "8 символов без спецсимвола", password: "abcdefgh", want: false},
		{name: "короче 8 со спецсимволом", password: "abc!", want: false},
		{name: "длинный со спецсимволом в середине", password: "pass@word123", want: true},
		{name: "только спецсимволы", password: "!@#$%^&*", want: true},
		{name: "пустой пароль", password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Password(tt.password); got != tt.want {
				t.Errorf("Password(%q) = %v, хотели %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestCounterConfig(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    int
		wantErr bool
	}{
		{name: "корректная строка", line: "counters=3", want: 3},
		{name: "пробелы по краям", line: "  counters=2 ", want: 2},
		{name: "ноль окон", line: "counters=0", wantErr: true},
		{name: "без числа", line: "counters=", wantErr: true},
		{name: "нецифровое значение", line: "counters=two", wantErr: true},
		{name: "другой ключ", line: "windows=3", wantErr: true},
		{name: "пустая строка", line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CounterConfig(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CounterConfig(%q) не вернул ошибку, получено %d", tt.line, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CounterConfig(%q) вернул ошибку: %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("CounterConfig(%q) = %d, хотели %d", tt.line, got, tt.want)
			}
		})
	}
}
