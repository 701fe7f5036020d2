package services

import "github.com/rcdinesh/kidcastdailyapp/internal/models"

// SelectProvider chooses the TTS backend for a script of the given length.
//
// Scripts at or above the Google ceiling are forced to Amazon Polly no
// matter what the caller prefers; overridden reports that so the caller can
// surface a one-time advisory. Below the ceiling the preference is honored
// unchanged, defaulting to Google when no preference is given.
//
// This is one of two independent checks: the Google adapter re-validates
// the ceiling itself before dispatch.
func SelectProvider(textLength int, preference models.TTSProvider) (provider models.TTSProvider, overridden bool) {
	if textLength >= GoogleTTSMaxChars {
		return models.TTSProviderAmazon, preference != models.TTSProviderAmazon
	}
	if preference == "" {
		return models.TTSProviderGoogle, false
	}
	return preference, false
}
