package cli

import (
	"bytes"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	_, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	dbFlag := root.PersistentFlags().Lookup("db")
	if dbFlag == nil {
		t.Fatal("expected --db flag to exist")
	}
}

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"submit"}, {"show"}, {"approve"}, {"reject"}, {"checkin"}, {"checkout"}, {"log"},
		{"pending"}, {"upcoming"}, {"occupants"}, {"history"},
		{"reviews"}, {"review", "add"}, {"review", "rm"}, {"export"},
		{"serve"}, {"config"}, {"status"}, {"version"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil {
			t.Errorf("find %v: %v", path, err)
			continue
		}
		if cmd.Name() != path[len(path)-1] {
			t.Errorf("find %v resolved to %q", path, cmd.Name())
		}
	}
}

func TestVersion(t *testing.T) {
	output, err := executeCommand("version")
	if err != nil {
		t.Fatal(err)
	}
	if output != Version+"\n" {
		t.Errorf("output = %q, want %q", output, Version+"\n")
	}
}
