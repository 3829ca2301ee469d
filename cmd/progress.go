package cmd

import (
	"github.com/kozaktomas/photo-culler/internal/analyzer"
	"github.com/schollz/progressbar/v3"
)

func newProgressBar(total int, description, unit string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(unit),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// analysisBar renders analysis progress. The bar is created on the first
// event, once the total is known.
func analysisBar(description string) func(analyzer.AnalysisProgress) {
	var bar *progressbar.ProgressBar
	return func(p analyzer.AnalysisProgress) {
		if bar == nil {
			if p.Total == 0 {
				return
			}
			bar = newProgressBar(p.Total, description, "photos")
		}
		_ = bar.Set(p.Current)
		if p.Done {
			_ = bar.Finish()
		}
	}
}
