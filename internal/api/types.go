package api

// Request payloads for the v1 API.

type IssueCodeRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type CreateMealRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description"`
	Date              string   `json:"date" binding:"required"`
	Time              string   `json:"time" binding:"required"`
	PortionsAvailable int      `json:"portions_available" binding:"required,min=1"`
	CuisineType       string   `json:"cuisine_type"`
	DietaryInfo       []string `json:"dietary_info"`
	Location          string   `json:"location"`
	Lat               *float64 `json:"lat"`
	Lng               *float64 `json:"lng"`
	ImageURL          string   `json:"image_url"`
}

type CreatePortionRequest struct {
	MealID            string `json:"meal_id" binding:"required,uuid"`
	PortionsRequested int    `json:"portions_requested" binding:"required,min=1"`
	Message           string `json:"message"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved denied completed"`
}

type CreateReviewRequest struct {
	MealID  string `json:"meal_id" binding:"required,uuid"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

type SendMessageRequest struct {
	ReceiverEmail string `json:"receiver_email" binding:"required,email"`
	Content       string `json:"content" binding:"required"`
}

type CreateFeedbackRequest struct {
	Mood      string `json:"mood" binding:"required,oneof=love like okay dislike"`
	Category  string `json:"category" binding:"required,oneof=suggestion bug general"`
	Feedback  string `json:"feedback" binding:"required"`
	UserEmail string `json:"user_email" binding:"omitempty,email"`
}

type MarkMessagesReadRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type UpdateProfileRequest struct {
	FullName          string `json:"full_name"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type ResolveImageRequest struct {
	URL string `json:"url" binding:"required"`
}
