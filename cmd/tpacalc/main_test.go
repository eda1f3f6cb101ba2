package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../test/testdata/"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "tpacalc", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "tpacalc")
}

func TestCommandSubcommands(t *testing.T) {
	expected := []string{"test", "ndt", "compare", "correct-415", "impact", "earnings", "risk", "limits", "validate", "serve", "version"}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %s not registered", name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tpacalc dev")
}

func TestTestCommand(t *testing.T) {
	out, err := execute(t, "test", testdata+"census.yaml",
		"--rules", testdata+"plan_rules.yaml", "--format", "console")
	require.NoError(t, err)

	assert.Contains(t, out, "ACME MANUFACTURING 401(K) PLAN")
	assert.Contains(t, out, "ADP TEST")
	assert.Contains(t, out, "ACP TEST")
	assert.Contains(t, out, "E005")
}

func TestNDTCommand(t *testing.T) {
	out, err := execute(t, "ndt", testdata+"leveling_adp.yaml", "--format", "json")
	require.NoError(t, err)

	var result domain.TestResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Passed)
	assert.Equal(t, "2%/2x", result.Prong)
	assert.Equal(t, "6000.00", result.TotalRequiredRefund.StringFixed(2))
	assert.Equal(t, "5000.00", result.RefundFor("hce-1").StringFixed(2))
}

func TestCompareCommand(t *testing.T) {
	out, err := execute(t, "compare", testdata+"census.yaml",
		"--rules", testdata+"plan_rules.yaml", "--with", "direct_to_target/rate", "--format", "csv")
	require.NoError(t, err)

	assert.Contains(t, out, "staircase/rate,base,6000.00")
	assert.Contains(t, out, "direct_to_target/rate,alternative,8000.00")

	_, err = execute(t, "compare", testdata+"census.yaml", "--with", "zigzag")
	assert.ErrorContains(t, err, "unknown correction method")
}

func TestCorrectCommand(t *testing.T) {
	out, err := execute(t, "correct-415", testdata+"annual_additions.yaml", "--format", "console")
	require.NoError(t, err)

	assert.Contains(t, out, "E005: additions $51500.00, limit $50000.00, excess $1500.00")
	assert.Contains(t, out, "electiveDeferral")
	assert.Contains(t, out, "Refunds (1099-R): $1500.00")
}

func TestImpactCommand(t *testing.T) {
	out, err := execute(t, "impact", testdata+"annual_additions.yaml", "--refund", "1500", "--format", "console")
	require.NoError(t, err)
	assert.Contains(t, out, "415(c) excess resolved by the ADP refund")

	_, err = execute(t, "impact", testdata+"annual_additions.yaml", "--refund", "lots")
	assert.ErrorContains(t, err, "not a number")
}

func TestEarningsCommand(t *testing.T) {
	out, err := execute(t, "earnings", "--excess", "1000", "--beginning", "50000",
		"--contributions", "20000", "--ending", "77000", "--format", "console")
	require.NoError(t, err)

	assert.Contains(t, out, "Allocable earnings:        $100.00")
	assert.Contains(t, out, "Total distribution:        $1100.00")
}

func TestRiskCommand(t *testing.T) {
	out, err := execute(t, "risk", "--nhce", "0.03", "--hce", "0.06", "--format", "console")
	require.NoError(t, err)

	assert.Contains(t, out, "RISK OF FAILURE")
	assert.Contains(t, out, "Shortfall:        1.00%")
}

func TestLimitsCommand(t *testing.T) {
	out, err := execute(t, "limits", "--rules", testdata+"plan_rules_safe_harbor.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "Safe harbor: true")
	assert.Contains(t, out, "70000")
	assert.Contains(t, out, "(default)")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", testdata+"census.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Census is valid: 5 employees for plan year 2024")

	_, err = execute(t, "validate", testdata+"missing.yaml")
	assert.ErrorContains(t, err, "failed to read file")
}

func TestTestCommand_UnknownFormat(t *testing.T) {
	_, err := execute(t, "test", testdata+"census.yaml", "--format", "html")
	assert.ErrorContains(t, err, "unsupported format")
}
