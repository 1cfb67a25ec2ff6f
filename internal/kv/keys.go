package kv

const (
	KeyUser           = "fittrack_user"
	KeySteps          = "fittrack_steps"
	KeyYesterdaySteps = "fittrack_yesterday_steps"
	KeyStepDate       = "fittrack_step_date"
	KeyWorkouts       = "fittrack_workouts"
	KeyWeekStart      = "fittrack_week_start"
	KeyGoals          = "fittrack_goals"
	KeyGoalDate       = "fittrack_goal_date"
	KeyGoalLatches    = "fittrack_goal_latches"
	KeyActivityDates  = "fittrack_activity_dates"
	KeyCart           = "fittrack_cart"
	KeyWishlist       = "fittrack_wishlist"
	KeyComparison     = "fittrack_comparison"
	KeyOrders         = "fittrack_orders"
	KeyUserReviews    = "fittrack_user_reviews"
	KeyProfileImage   = "fittrack_profile_image"
	KeyTheme          = "fittrack_theme"
)

// AllKeys lists every key the service persists.
var AllKeys = []string{
	KeyUser,
	KeySteps,
	KeyYesterdaySteps,
	KeyStepDate,
	KeyWorkouts,
	KeyWeekStart,
	KeyGoals,
	KeyGoalDate,
	KeyGoalLatches,
	KeyActivityDates,
	KeyCart,
	KeyWishlist,
	KeyComparison,
	KeyOrders,
	KeyUserReviews,
	KeyProfileImage,
	KeyTheme,
}
