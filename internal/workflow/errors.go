package workflow

// User-facing validation messages.
const (
	MsgFieldsRequired = "All fields are required."
	MsgStillUploading = "Please wait for the image to finish uploading."
	MsgNoImage        = "Please choose an image file."
	MsgImageTooLarge  = "The image is too large."
	MsgCreated        = "Blog post created successfully!"
)

// ValidationError is a submit or selection rejected before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
