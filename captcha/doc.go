// Package captcha recognizes the fixed-format text captcha served by the
// tracker's login page.
//
// The tracker renders a short alphanumeric string into a bitmap of known
// dimensions, one character per fixed-size cell. A pre-trained classifier
// artifact maps each cell to a character label; the solver slices the
// image into cells, classifies each one and concatenates the labels into
// the login form's captcha answer.
//
// The artifact is self-describing: it carries the cell geometry, the
// binarization threshold and the labeled prototype vectors the classifier
// matches against. Nothing about the captcha format is hard-coded in this
// package, so retraining for a changed format only requires shipping a
// new artifact.
//
// # Usage
//
//	model, err := captcha.LoadModel("model.gob")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	solver := captcha.NewSolver(model, logger)
//	answer, err := solver.Solve(imageBytes)
//
// Solve either returns a string of exactly model.Geometry.CharCount
// characters or an error; it never returns a partial prediction.
package captcha
