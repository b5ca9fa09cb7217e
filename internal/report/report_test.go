package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

func sampleResult() entity.ScenarioResult {
	return entity.ScenarioResult{
		Name:     "settings smoke",
		Duration: 4200 * time.Millisecond,
		Results: []entity.StepResult{
			{Index: 0, Step: entity.SkillStep{Kind: entity.StepLaunch, App: "Settings"},
				Status: entity.StatusPassed, Duration: 900 * time.Millisecond},
			{Index: 1, Step: entity.SkillStep{Kind: entity.StepTap, Label: "General"},
				Status: entity.StatusFailed, Message: `"General" not found; visible: Privacy, Storage`},
			{Index: 2, Step: entity.SkillStep{Kind: entity.StepHome},
				Status: entity.StatusSkipped, Message: "previous step failed"},
		},
	}
}

func TestConsoleScenarioRendersAllSteps(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Scenario(sampleResult())

	out := buf.String()
	assert.Contains(t, out, "settings smoke")
	assert.Contains(t, out, `launch "Settings"`)
	assert.Contains(t, out, `tap "General"`)
	assert.Contains(t, out, `"General" not found`)
	assert.Contains(t, out, "1 passed, 1 failed, 1 skipped")
}

func TestConsoleDiagnosesAndAdvice(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Diagnoses([]entity.Diagnosis{{
		StepIndex: 1,
		StepType:  "tap",
		Verdict:   entity.VerdictDisplaced,
		Summary:   "element moved since compilation",
		Patches:   []entity.Patch{{Field: "y", Was: "300.0", ShouldBe: "420.0"}},
	}})
	c.Advice("increase the wait on step 0")

	out := buf.String()
	assert.Contains(t, out, "step 1 (tap): element moved since compilation")
	assert.Contains(t, out, "y: 300.0 -> 420.0")
	assert.Contains(t, out, "increase the wait on step 0")
}

func TestConsoleSkipsEmptyDiagnosisBlocks(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Diagnoses(nil)
	c.Advice("")
	assert.Empty(t, buf.String())
}

func TestJUnitShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, []entity.ScenarioResult{sampleResult()}))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	suites := doc.SelectElement("testsuites")
	require.NotNil(t, suites)
	assert.Equal(t, "3", suites.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", suites.SelectAttrValue("failures", ""))
	assert.Equal(t, "1", suites.SelectAttrValue("skipped", ""))

	suite := suites.SelectElement("testsuite")
	require.NotNil(t, suite)
	assert.Equal(t, "settings smoke", suite.SelectAttrValue("name", ""))
	assert.Equal(t, "4.200", suite.SelectAttrValue("time", ""))

	cases := suite.SelectElements("testcase")
	require.Len(t, cases, 3)

	assert.Nil(t, cases[0].SelectElement("failure"))
	failure := cases[1].SelectElement("failure")
	require.NotNil(t, failure)
	assert.Contains(t, failure.SelectAttrValue("message", ""), "not found")
	require.NotNil(t, cases[2].SelectElement("skipped"))
	assert.Equal(t, "previous step failed", cases[2].SelectElement("skipped").SelectAttrValue("message", ""))
}

func TestJUnitEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, nil))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	suites := doc.SelectElement("testsuites")
	require.NotNil(t, suites)
	assert.Equal(t, "0", suites.SelectAttrValue("tests", ""))
}
