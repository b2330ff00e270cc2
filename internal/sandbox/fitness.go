package sandbox

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/neurofit/internal/client/models"
)

var workoutPlans = map[string][]models.Exercise{
	models.GoalWeightLoss: {
		{Name: "Jumping jacks", Sets: 3, Reps: 40, Description: "Keep a steady pace."},
		{Name: "Bodyweight squats", Sets: 3, Reps: 20, Description: "Full range of motion."},
		{Name: "Mountain climbers", Sets: 3, Reps: 30, Description: "Hips level."},
	},
	models.GoalMuscleGain: {
		{Name: "Push-ups", Sets: 4, Reps: 12, Description: "Slow on the way down."},
		{Name: "Lunges", Sets: 4, Reps: 10, Description: "Each leg."},
		{Name: "Pike push-ups", Sets: 3, Reps: 8, Description: "Shoulders over hands."},
	},
	models.GoalEndurance: {
		{Name: "Burpees", Sets: 5, Reps: 10, Description: "Short rest between sets."},
		{Name: "High knees", Sets: 4, Reps: 50, Description: "Drive the arms."},
	},
	models.GoalGeneralFitness: {
		{Name: "Plank", Sets: 3, Reps: 1, Description: "Hold for 45 seconds."},
		{Name: "Glute bridges", Sets: 3, Reps: 15, Description: "Squeeze at the top."},
		{Name: "Push-ups", Sets: 3, Reps: 10, Description: "Knees down if needed."},
	},
}

var dailyMeals = models.Meals{
	Breakfast: models.Meal{Items: []string{"Oatmeal", "Banana"}, Grams: []float64{80, 120}, Calories: 410, Proteins: 12, Fats: 6, Carbs: 78},
	Lunch:     models.Meal{Items: []string{"Chicken breast", "Rice", "Broccoli"}, Grams: []float64{150, 100, 120}, Calories: 620, Proteins: 52, Fats: 9, Carbs: 82},
	Dinner:    models.Meal{Items: []string{"Salmon", "Potatoes"}, Grams: []float64{140, 200}, Calories: 590, Proteins: 36, Fats: 22, Carbs: 58},
}

// goalOf must be called with s.mu held.
func (s *Server) goalOf(id int) string {
	if a := s.accountByID(id); a != nil && a.user.Goal != nil {
		return *a.user.Goal
	}
	return models.GoalGeneralFitness
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	var in models.CoachRequest
	if err := readJSON(r, &in); err != nil || len(in.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Messages list is required"})
		return
	}

	last := in.Messages[len(in.Messages)-1]
	answer := "Tell me a bit more about your goal and I will suggest a plan."
	if q := strings.TrimSpace(last.Content); q != "" && last.Role == models.RoleUser {
		answer = "Good question about \"" + q + "\". Stay consistent, sleep well and keep protein high."
	}
	writeJSON(w, http.StatusOK, models.CoachAnswer{Answer: answer})
}

func (s *Server) handleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	id := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	goal := s.goalOf(id)
	wk := &models.Workout{
		ID:    s.newID(),
		Title: "Workout for " + strings.ReplaceAll(goal, "_", " "),
		Date:  s.today(),
		Plan:  append([]models.Exercise(nil), workoutPlans[goal]...),
	}
	s.workouts[id] = append(s.workouts[id], wk)
	writeJSON(w, http.StatusCreated, wk)
}

func (s *Server) handleLatestWorkout(w http.ResponseWriter, r *http.Request) {
	id := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.workouts[id]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Date == s.today() {
			writeJSON(w, http.StatusOK, list[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "No workout for today"})
}

func (s *Server) handleCompleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, wid := userID(r), pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, wk := range s.workouts[id] {
		if wk.ID == wid {
			wk.Completed = true
			writeJSON(w, http.StatusOK, map[string]string{"status": "Workout completed"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Not found.")
}

func (s *Server) handleGenerateNutrition(w http.ResponseWriter, r *http.Request) {
	id := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	plan := &models.NutritionPlan{
		ID:       s.newID(),
		Date:     s.today(),
		Meals:    dailyMeals,
		Calories: dailyMeals.Breakfast.Calories + dailyMeals.Lunch.Calories + dailyMeals.Dinner.Calories,
	}
	s.nutrition[id] = append(s.nutrition[id], plan)
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleLatestNutrition(w http.ResponseWriter, r *http.Request) {
	id := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.nutrition[id]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Date == s.today() {
			writeJSON(w, http.StatusOK, list[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "No nutrition plan for today"})
}
