package models

// Fitness goals accepted by the profile endpoint.
const (
	GoalWeightLoss     = "weight_loss"
	GoalMuscleGain     = "muscle_gain"
	GoalEndurance      = "endurance"
	GoalGeneralFitness = "general_fitness"
)

// User is the profile resource served by /users/profile/.
type User struct {
	ID           int      `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	DateOfBirth  *string  `json:"date_of_birth,omitempty"`
	Gender       *string  `json:"gender,omitempty"`
	Height       *int     `json:"height,omitempty"`
	Weight       *Decimal `json:"weight,omitempty"`
	Goal         *string  `json:"goal,omitempty"`
	HasEquipment *bool    `json:"has_equipment,omitempty"`
	Avatar       *string  `json:"avatar,omitempty"`
}

// ProfileUpdate is a partial PATCH body. Nil fields are not sent.
type ProfileUpdate struct {
	DateOfBirth  *string  `json:"date_of_birth,omitempty"`
	Gender       *string  `json:"gender,omitempty"`
	Height       *int     `json:"height,omitempty"`
	Weight       *Decimal `json:"weight,omitempty"`
	Goal         *string  `json:"goal,omitempty"`
	HasEquipment *bool    `json:"has_equipment,omitempty"`
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.DateOfBirth == nil && p.Gender == nil && p.Height == nil &&
		p.Weight == nil && p.Goal == nil && p.HasEquipment == nil
}
