// Package audio plays a sound when a toast is shown.
// It uses the beep library to play WAV, OGG, and MP3 audio files
// with volume control and a sound per toast type.
package audio
