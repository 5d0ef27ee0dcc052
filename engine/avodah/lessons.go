package avodah

import (
	"fmt"
	"strings"

	"github.com/nathoo/mikdash/types"
)

func introLesson(o types.OfferingDef, level int) types.Lesson {
	if level <= 1 {
		return types.Lesson{
			Text:   o.Description + "\n\nFollow the steps to complete the Avodah!",
			Source: o.Source,
		}
	}
	var note string
	switch o.SlaughterLocation {
	case types.SlaughterNorth:
		note = "Must be slaughtered in the NORTH!"
	case types.SlaughterOnAltar:
		note = "Performed on the Mizbeach itself through Melikah."
	default:
		note = "Can be slaughtered anywhere in the Azara."
	}
	return types.Lesson{
		Text:   fmt.Sprintf("%s (%s)\n%s", o.Name, o.NameHe, note),
		Source: o.Mishnah,
	}
}

func wrongLocationLesson(o types.OfferingDef) types.Lesson {
	return types.Lesson{
		Text:   fmt.Sprintf("Wrong location! %s is Kodshei Kodashim. It must be slaughtered in the NORTH of the Azara!", o.Name),
		Source: "Zevachim 5:1",
	}
}

func anywhereLesson(o types.OfferingDef) types.Lesson {
	return types.Lesson{
		Text:   fmt.Sprintf("%s is Kodashim Kalim. It can be slaughtered anywhere in the Azara.", o.Name),
		Source: o.Mishnah,
	}
}

func bloodLesson(o types.OfferingDef) types.Lesson {
	var text string
	switch o.BloodService {
	case types.BloodFourCorners:
		text = "Place blood on all 4 horns (Kranot) of the Mizbeach, one on each corner."
	case types.BloodSqueezeOnWall:
		text = "The blood is squeezed out onto the wall of the Mizbeach."
	default:
		text = "Two placements that are four (Shnayim She'hen Arba): on two diagonal corners, so the blood touches all four sides."
	}
	return types.Lesson{Text: text, Source: o.Mishnah}
}

func burnLesson(o types.OfferingDef) types.Lesson {
	var text string
	switch o.Type {
	case types.OfferingBurnt:
		text = "The entire Olah is burned on the Mizbeach, a \"Re'ach Nichoach laHashem\" (pleasing aroma to Hashem)."
	case types.OfferingSin:
		text = fmt.Sprintf("The Chalavim (fats) are burned. The meat is eaten by male Kohanim in the Azara, %s.", lowerFirst(o.EatingTimeLimit))
	default:
		text = fmt.Sprintf("The Chalavim (fats) are burned. The meat is shared, eaten by anyone who is tahor in Yerushalayim, %s.", lowerFirst(o.EatingTimeLimit))
	}
	return types.Lesson{Text: text, Source: o.Source}
}

func summaryLesson(o types.OfferingDef) types.Lesson {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n%s", o.Name, o.NameHe, o.Description)
	if o.EatenBy == "" || o.EatenBy == "none" {
		b.WriteString("\nEntirely consumed on the Mizbeach.")
	} else {
		fmt.Fprintf(&b, "\nEaten by: %s in %s, %s.", FormatEatenBy(o.EatenBy), o.EatingLocation, lowerFirst(o.EatingTimeLimit))
	}
	source := o.Source
	if o.Mishnah != "" {
		source += " | " + o.Mishnah
	}
	return types.Lesson{Text: b.String(), Source: source}
}

// FormatEatenBy renders who may eat from an offering.
func FormatEatenBy(code string) string {
	switch code {
	case "male_kohanim":
		return "Male Kohanim only"
	case "anyone_tahor":
		return "Anyone who is tahor (ritually pure)"
	case "kohanim":
		return "Kohanim and their families"
	default:
		return code
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
