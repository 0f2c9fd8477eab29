// file: internals/features/assignments/assignment/model/assignment_model_test.go
package model

import "testing"

func TestIsAllowed(t *testing.T) {
	tests := []struct {
		name     string
		ipRanges string
		ip       string
		want     bool
	}{
		{name: "ranges kosong semua boleh", ipRanges: "", ip: "10.0.0.1", want: true},
		{name: "ranges spasi saja semua boleh", ipRanges: "   ", ip: "10.0.0.1", want: true},
		{name: "ip candidate rusak ditolak", ipRanges: "10.0.0.0/8", ip: "bukan-ip", want: false},
		{name: "whitelist polos cocok", ipRanges: "192.168.1.5", ip: "192.168.1.5", want: true},
		{name: "whitelist polos tidak cocok", ipRanges: "192.168.1.5", ip: "192.168.1.6", want: false},
		{name: "cidr cocok", ipRanges: "10.0.0.0/8", ip: "10.20.30.40", want: true},
		{name: "cidr tidak cocok", ipRanges: "10.0.0.0/8", ip: "11.0.0.1", want: false},
		{name: "blacklist menang atas allowed", ipRanges: "10.0.0.0/8, ^10.1.0.0/16", ip: "10.1.2.3", want: false},
		{name: "blacklist tidak kena", ipRanges: "10.0.0.0/8, ^10.1.0.0/16", ip: "10.2.0.1", want: true},
		{name: "override ! mengalahkan blacklist", ipRanges: "^10.0.0.0/8, !10.0.0.5", ip: "10.0.0.5", want: true},
		{name: "override ! saja tidak bikin allowed", ipRanges: "!10.0.0.5", ip: "10.0.0.6", want: false},
		{name: "blacklist saja tanpa allow tetap tolak", ipRanges: "^10.0.0.0/8", ip: "11.0.0.1", want: false},
		{name: "entry rusak dilewati", ipRanges: "garbage, 10.0.0.1", ip: "10.0.0.1", want: true},
		{name: "entry kosong di tengah", ipRanges: "10.0.0.1,, 10.0.0.2", ip: "10.0.0.2", want: true},
		{name: "ipv6 cidr", ipRanges: "2001:db8::/32", ip: "2001:db8::1", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AssignmentModel{IPRanges: tt.ipRanges}
			if got := a.IsAllowed(tt.ip); got != tt.want {
				t.Errorf("IsAllowed(%q) dengan ranges %q = %v, want %v", tt.ip, tt.ipRanges, got, tt.want)
			}
		})
	}
}

func TestPasscodeFails(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		given    string
		want     bool
	}{
		{name: "tanpa passcode tidak pernah gagal", settings: "", given: "", want: false},
		{name: "tanpa passcode input apa pun lolos", settings: "{}", given: "tebakan", want: false},
		{name: "passcode cocok", settings: `{"passcode":"rahasia"}`, given: "rahasia", want: false},
		{name: "passcode salah", settings: `{"passcode":"rahasia"}`, given: "salah", want: true},
		{name: "passcode kosong diberikan", settings: `{"passcode":"rahasia"}`, given: "", want: true},
		{name: "settings korup dianggap tanpa passcode", settings: "{bukan json", given: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AssignmentModel{Settings: tt.settings}
			if got := a.PasscodeFails(tt.given); got != tt.want {
				t.Errorf("PasscodeFails(%q) = %v, want %v", tt.given, got, tt.want)
			}
		})
	}
}

func TestSaveFileVersionBump(t *testing.T) {
	a := AssignmentModel{}

	a.SaveFile("!on_run.py", "print('run')")
	if a.OnRun != "print('run')" || a.Version != 1 {
		t.Errorf("SaveFile on_run: OnRun=%q Version=%d", a.OnRun, a.Version)
	}

	a.SaveFile("^starting_code.py", "x = 1")
	if a.StartingCode != "x = 1" || a.Version != 2 {
		t.Errorf("SaveFile starting_code: %q v%d", a.StartingCode, a.Version)
	}

	// nama tidak dikenal: tidak ada kolom berubah tapi version tetap naik
	a.SaveFile("file_aneh.py", "apa pun")
	if a.Version != 3 {
		t.Errorf("Version = %d, want 3", a.Version)
	}
}

func TestUpdateSetting(t *testing.T) {
	a := AssignmentModel{}
	if err := a.UpdateSetting("passcode", "pintu"); err != nil {
		t.Fatalf("UpdateSetting() error = %v", err)
	}
	if a.Version != 1 {
		t.Errorf("Version = %d, want 1", a.Version)
	}
	if got := a.ParseSettings().Passcode; got != "pintu" {
		t.Errorf("Passcode = %q, want %q", got, "pintu")
	}
	// key lain tidak menimpa passcode
	if err := a.UpdateSetting("theme", "gelap"); err != nil {
		t.Fatalf("UpdateSetting() error = %v", err)
	}
	if got := a.GetSetting("theme", ""); got != "gelap" {
		t.Errorf("theme = %v", got)
	}
	if got := a.ParseSettings().Passcode; got != "pintu" {
		t.Errorf("Passcode hilang setelah update key lain: %q", got)
	}
	if got := a.GetSetting("absen", "default"); got != "default" {
		t.Errorf("GetSetting fallback = %v", got)
	}
}

func TestTitleAndFilename(t *testing.T) {
	url := "soal/looping-1"
	a := AssignmentModel{ID: 12, Name: "Untitled", URL: &url}
	if got := a.Title(); got != "Untitled (12)" {
		t.Errorf("Title() = %q", got)
	}
	a.Name = "Looping Dasar"
	if got := a.Title(); got != "Looping Dasar" {
		t.Errorf("Title() = %q", got)
	}
	if got := a.GetFilename(".json"); got == ".json" || got == "" {
		t.Errorf("GetFilename() = %q", got)
	}
	a.URL = nil
	if got := a.GetFilename(".json"); got == ".json" || got == "" {
		t.Errorf("GetFilename() tanpa url = %q", got)
	}
}

func TestContextIsValid(t *testing.T) {
	a := AssignmentModel{}
	if a.ContextIsValid("ctx-1", "ctx-1", false) {
		t.Error("course tidak ketemu seharusnya invalid")
	}
	if !a.ContextIsValid("ctx-1", "ctx-1", true) {
		t.Error("context sama seharusnya valid")
	}
	if a.ContextIsValid("ctx-1", "ctx-2", true) {
		t.Error("context beda seharusnya invalid")
	}
}
