package errors

// KindInfo contains metadata about an error kind.
type KindInfo struct {
	Kind            Kind
	PerItem         bool
	Description     string
	SuggestedAction string
}

// KindRegistry maps error kinds to their metadata.
var KindRegistry = map[Kind]KindInfo{
	KindConfiguration: {
		Kind:            KindConfiguration,
		PerItem:         false,
		Description:     "Required setting absent or invalid",
		SuggestedAction: "Check ~/.recap/config.yaml and RECAP_* environment variables",
	},
	KindNotFound: {
		Kind:            KindNotFound,
		PerItem:         true,
		Description:     "Identifier has no match among file store candidates",
		SuggestedAction: "Run 'recap process --list' to see available transcripts",
	},
	KindTransport: {
		Kind:            KindTransport,
		PerItem:         true,
		Description:     "Download or summarization-service call failed",
		SuggestedAction: "Check network connectivity and credentials ('recap auth show')",
	},
	KindMalformedResponse: {
		Kind:            KindMalformedResponse,
		PerItem:         true,
		Description:     "Summarization response undecodable (absorbed by fallback)",
		SuggestedAction: "No action needed; the local fallback extraction was used",
	},
	KindRendering: {
		Kind:            KindRendering,
		PerItem:         true,
		Description:     "Output-format construction failed",
		SuggestedAction: "Retry with --output json to inspect the underlying result",
	},
	KindTimeout: {
		Kind:            KindTimeout,
		PerItem:         true,
		Description:     "External call exceeded its deadline",
		SuggestedAction: "Increase --timeout or check service health",
	},
	KindCancelled: {
		Kind:            KindCancelled,
		PerItem:         true,
		Description:     "Operation cancelled by the caller",
		SuggestedAction: "Check whether the cancellation was intentional",
	},
	KindProcessing: {
		Kind:            KindProcessing,
		PerItem:         true,
		Description:     "Unclassified processing error",
		SuggestedAction: "Re-run with --debug for details",
	},
}

// IsPerItem reports whether the kind is captured per item rather than
// aborting the whole batch.
func IsPerItem(kind Kind) bool {
	if info, ok := KindRegistry[kind]; ok {
		return info.PerItem
	}
	return true
}

// Description returns the human-readable description for the given kind.
func Description(kind Kind) string {
	if info, ok := KindRegistry[kind]; ok {
		return info.Description
	}
	return "Unknown error"
}
