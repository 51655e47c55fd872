package email

const (
	subjectWelcome           = "Welcome to your rental profile"
	subjectSavedSearchMatch  = "New listing matches your saved search"
	subjectTrustScoreChanged = "Your trust score has been updated"
)
