package report

import (
	"fmt"
	"strings"

	"crosscheck/internal/core/ports"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

func (t *TSVGenerator) Generate(result ports.AnalyzeResult) (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tSeverity\tKind\tSymbol\tLine\tTasks\tCanAutoMerge\tStrategy\tReason\n")
	for _, file := range result.Files {
		for _, region := range file.Regions {
			kind := ""
			if len(region.ChangeTypes) > 0 {
				kind = string(region.ChangeTypes[0])
			}
			buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%s\t%t\t%s\t%s\n",
				region.FilePath,
				region.Severity,
				kind,
				region.Location,
				region.LineNumber,
				strings.Join(region.TasksInvolved, ","),
				region.CanAutoMerge,
				region.MergeStrategy,
				strings.ReplaceAll(region.Reason, "\t", " "),
			))
		}
	}

	return buf.String(), nil
}
