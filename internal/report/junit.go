package report

import (
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// WriteJUnit renders results as JUnit XML, one testsuite per scenario and one
// testcase per step. Most CI systems ingest this shape directly.
func WriteJUnit(w io.Writer, results []entity.ScenarioResult) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suites := doc.CreateElement("testsuites")
	var totalTests, totalFailures, totalSkipped int

	for _, res := range results {
		passed, failed, skipped := res.Counts()
		totalTests += passed + failed + skipped
		totalFailures += failed
		totalSkipped += skipped

		suite := suites.CreateElement("testsuite")
		suite.CreateAttr("name", res.Name)
		suite.CreateAttr("tests", fmt.Sprintf("%d", passed+failed+skipped))
		suite.CreateAttr("failures", fmt.Sprintf("%d", failed))
		suite.CreateAttr("skipped", fmt.Sprintf("%d", skipped))
		suite.CreateAttr("time", fmt.Sprintf("%.3f", res.Duration.Seconds()))

		for _, sr := range res.Results {
			tc := suite.CreateElement("testcase")
			tc.CreateAttr("name", fmt.Sprintf("%03d %s", sr.Index, sr.Step.Describe()))
			tc.CreateAttr("classname", res.Name)
			tc.CreateAttr("time", fmt.Sprintf("%.3f", sr.Duration.Seconds()))

			switch sr.Status {
			case entity.StatusFailed:
				failure := tc.CreateElement("failure")
				failure.CreateAttr("message", sr.Message)
				failure.SetText(sr.Message)
			case entity.StatusSkipped:
				sk := tc.CreateElement("skipped")
				if sr.Message != "" {
					sk.CreateAttr("message", sr.Message)
				}
			}
		}
	}

	suites.CreateAttr("tests", fmt.Sprintf("%d", totalTests))
	suites.CreateAttr("failures", fmt.Sprintf("%d", totalFailures))
	suites.CreateAttr("skipped", fmt.Sprintf("%d", totalSkipped))

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
