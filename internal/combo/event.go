package combo

import "fmt"

// Kind identifies a combo event.
type Kind int

const (
	KindStreak Kind = iota
	KindBroken
	KindPerfectPhrase
)

// Event is emitted when a milestone is reached, a streak breaks or a phrase
// is finished without errors. Milestone is only set for KindStreak.
type Event struct {
	Kind      Kind
	Milestone int
}

// Message is the popup text for the event.
func (e Event) Message() string {
	switch e.Kind {
	case KindBroken:
		return "💔 Combo Broken!"
	case KindPerfectPhrase:
		return "✨ Perfect Phrase!"
	}
	switch e.Milestone {
	case 5:
		return "🔥 Combo +5!"
	case 10:
		return "⚡ Combo +10!"
	case 15:
		return "💫 Combo +15!"
	case 20:
		return "🌟 Combo +20!"
	case 40:
		return "💥 COMBO +40!"
	case 80:
		return "🚀 MEGA COMBO +80!"
	case 160:
		return "⭐ ULTRA COMBO +160!"
	case 320:
		return "👑 LEGENDARY +320!"
	case 640:
		return "🔱 GODLIKE +640!"
	case 1000:
		return "🏆 UNSTOPPABLE +1000!"
	default:
		return fmt.Sprintf("Combo +%d!", e.Milestone)
	}
}

// Color is the popup accent color as a hex string.
func (e Event) Color() string {
	switch e.Kind {
	case KindBroken:
		return "#666666"
	case KindPerfectPhrase:
		return "#F74C00"
	}
	switch e.Milestone {
	case 5:
		return "#FFC107"
	case 10:
		return "#FF9800"
	case 15:
		return "#FF5722"
	case 20:
		return "#E91E63"
	case 40:
		return "#9C27B0"
	case 80:
		return "#673AB7"
	case 160:
		return "#3F51B5"
	case 320:
		return "#2196F3"
	case 640:
		return "#00BCD4"
	default:
		return "#FFD700"
	}
}

func (e Event) String() string {
	switch e.Kind {
	case KindBroken:
		return "broken"
	case KindPerfectPhrase:
		return "perfect-phrase"
	default:
		return fmt.Sprintf("streak(%d)", e.Milestone)
	}
}
