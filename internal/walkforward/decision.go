package walkforward

import (
	"github.com/augurlab/augur/internal/model"
	"github.com/augurlab/augur/internal/types"
)

// Decide maps class probabilities to a decision. The buy side is checked
// first, so a probability pair clearing both thresholds resolves to buy.
func Decide(prob model.Probability, buyThreshold, sellThreshold float64) types.Decision {
	if prob.Up >= buyThreshold {
		return types.DecisionBuy
	}

	if prob.Down >= sellThreshold {
		return types.DecisionSell
	}

	return types.DecisionHold
}
