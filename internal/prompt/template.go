package prompt

import (
	"fmt"
	"strings"
)

const scoreBands = `**total_score bands:**
- 90-100: flawless strategy execution
- 75-89: mostly solid
- 60-74: grasped the core idea, needs refinement
- 40-59: diverged from the strategy
- 0-39: unplanned trading

**total_score weighs:** entry timing (pullbacks, support levels), use of
technical indicators (moving averages), trend reading, risk management, and
adherence to the video's strategy.`

// renderTemplate interpolates the strategy context and the rendered trade
// records into the instructional template.
func (a *Assembler) renderTemplate(strategyContext, records string) string {
	var b strings.Builder

	b.WriteString("You are a sharp but encouraging investment mentor AI for beginner stock traders.\n\n")

	b.WriteString("**[Role]**\n")
	if a.opts.GroupByInstrument {
		b.WriteString("Analyze the full trade history **per instrument** and give practical advice for each one. ")
	} else {
		b.WriteString("Evaluate each trade against the strategy, focusing on whether buy entries were well timed. ")
	}
	b.WriteString("Ground every point in the video's investment strategy (Context) and make the advice concrete and actionable.\n\n")

	fmt.Fprintf(&b, "**[Video strategy (Context)]**\n%s\n\n", strategyContext)

	if a.opts.GroupByInstrument {
		fmt.Fprintf(&b, "**[User trade history, grouped by instrument]**\n%s\n\n", records)
	} else {
		fmt.Fprintf(&b, "**[User trade history and price action]**\n%s\n\n", records)
	}

	b.WriteString(`**[Advice guidelines]**
1. Be concrete and actionable: phrase advice as "next time, do this".
2. Reference the video's trading principles explicitly (pullbacks, moving averages, support levels, and so on).
3. Acknowledge what went well; frame improvements constructively.
4. Keep each advice to 2-4 sentences.
5. If the price data is insufficient, say so honestly and give general guidance instead.

`)

	if a.opts.IncludeScoreBands {
		b.WriteString(scoreBands)
		b.WriteString("\n\n")
	}

	b.WriteString(`**[Output format (JSON)]**
{
    "analysis": [
        {
            "trade_id": 1,
            "stock_name": "instrument name",
            "type": "dominant action for this entry (e.g. buy x2)",
            "advice": "concrete advice grounded in the video strategy"
        }
    ],
    "total_score": 75
}

`)

	b.WriteString("**Important**:\n")
	if a.opts.SingleEntryPerInstrument {
		b.WriteString("- Produce EXACTLY ONE analysis entry per instrument, covering all of that instrument's trades together. Never emit one entry per trade.\n")
		b.WriteString("- trade_id is the 1-based position of the instrument group above, not a trade count.\n")
	}
	b.WriteString("- total_score must be an integer between 0 and 100.\n")
	b.WriteString("- Respond with the JSON object only.\n")

	return b.String()
}
