package advisor

import (
	"fmt"

	"outfit-advisor/internal/weather"
)

const promptTemplate = `Based on the following weather, suggest an appropriate outdoor outfit.
Break it down into:
- 👕 Top
- 👖 Bottom
- 👟 Footwear
- 🧢 Accessories

Forecast: %s`

// BuildPrompt embeds a reading into the fixed outfit request. Only the values
// and their unit symbols change between readings.
func BuildPrompt(r weather.Reading) string {
	forecast := fmt.Sprintf("The temperature is %s%s, it is %s, with a wind speed of %s %s.",
		formatNumber(r.Temperature), r.Units.TemperatureSymbol(),
		r.Description,
		formatNumber(r.WindSpeed), r.Units.WindSpeedUnit(),
	)
	return fmt.Sprintf(promptTemplate, forecast)
}
