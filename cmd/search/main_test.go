package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const foodCSV = `Food_ID,Name,C_Type,Veg_Non,Describe
1,Chicken Curry,Indian,non-veg,Spicy chicken curry
2,Mango Mousse,Dessert,veg,Sweet mango dessert
3,Fish Curry,Indian,non-veg,Spicy fish curry
`

func writeData(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "food.csv")
	if err := os.WriteFile(path, []byte(foodCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunVSM(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-model", "vsm", "-query", "spicy curry", "-k", "3", "-data", writeData(t)}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v (%s)", err, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"1. DocID: 0 | Score: 0.7324",
		"2. DocID: 2 | Score: 0.7324",
		"3. DocID: 1 | Score: 0.0000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunBoolean(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-model", "boolean", "-query", "curry not fish", "-data", writeData(t)}, &stdout, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "1. DocID: 0 | Score: 1.0000") {
		t.Errorf("output:\n%s", stdout.String())
	}
	if strings.Contains(stdout.String(), "2. DocID") {
		t.Errorf("unexpected second result:\n%s", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	data := writeData(t)
	tests := [][]string{
		{"-query", "curry", "-data", data},
		{"-model", "lsi", "-query", "curry", "-data", data},
		{"-model", "vsm", "-query", "curry", "-data", filepath.Join(t.TempDir(), "missing.csv")},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		if err := run(args, &stdout, &stderr); err == nil {
			t.Errorf("run(%v) succeeded", args)
		}
	}
}
