package services

import (
	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/utils"
)

// Bill is the priced breakdown of a frozen session. TableCost and ItemsCost
// keep full decimals for display; TotalPayable is floored to the whole
// currency unit.
type Bill struct {
	TableCost    float64 `json:"table_cost"`
	ItemsCost    float64 `json:"items_cost"`
	TotalPayable float64 `json:"total_payable"`
	PlayedHours  float64 `json:"played_hours"`
}

// CalculateBill prices a session against a table's hourly rate for the given
// payment method. Membership settles table time from the member's hours
// balance, so only the items total is payable in money.
func CalculateBill(session *models.ActiveSession, rate float64, paymentMethod string) Bill {
	bill := Bill{
		TableCost:   float64(session.ElapsedSeconds) / 3600 * rate,
		PlayedHours: utils.RoundHours(float64(session.ElapsedSeconds) / 3600),
	}
	for _, line := range session.Items {
		bill.ItemsCost += line.Price * float64(line.Quantity)
	}

	if paymentMethod == models.PaymentMethodMembership {
		bill.TotalPayable = utils.FloorAmount(bill.ItemsCost)
	} else {
		bill.TotalPayable = utils.FloorAmount(bill.TableCost + bill.ItemsCost)
	}
	return bill
}
