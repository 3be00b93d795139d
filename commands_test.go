package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dictionary_classifier/classifier"
)

func TestDefaultsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"defaults"})
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	d, err := classifier.ParseJSON(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, classifier.Default(), d)
	assert.Contains(t, out.String(), "\n  \"urgency_marketing\": [\n")
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	dict := filepath.Join(dir, "dict.yaml")

	writeFile(t, input, "Statement,source\nBook a table today,web\n,email\nsee you tomorrow,sms\n")
	writeFile(t, dict, "reservation: book a table\ntime:\n  - today\n  - tomorrow\n")

	rootCmd.SetArgs([]string{"classify", "-i", input, "-o", output, "-d", dict, "-w", "2"})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Statement,source,labels\n"+
		"Book a table today,web,\"reservation,time\"\n"+
		",email,\n"+
		"see you tomorrow,sms,time\n", string(data))
}
