// Package inference runs one prediction request end to end.
//
// A Service owns the loaded model assets, the audio normalizer and the label
// interpreter. Run takes raw bytes from an upload or the recorder and returns
// either a complete Outcome or an error; there are no partial results.
// UserMessage converts those errors into text suitable for the person who
// submitted the audio.
package inference
