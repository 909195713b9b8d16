package prompts

import (
	"fmt"
	"strings"
)

// Router is the system prompt for domain/sensitivity classification.
const Router = "You are a classifier for an internal employee assistant. " +
	"Return only JSON with keys domain and sensitivity. " +
	"Domain must be one of: workspace, hr, ops, it, doc_qa, generic. " +
	"Sensitivity must be one of: normal, hr_personal, salary, access. " +
	"If unsure, use generic and normal."

// RepairJSON is the system prompt for the single JSON repair round.
const RepairJSON = "Convert the following into a single valid JSON object. " +
	"Return only the JSON object with no prose, code fences, or extra text."

// ClarifyFallback is asked when a missing field has no registered question.
const ClarifyFallback = "Could you clarify the missing detail?"

// Classification builds the system prompt that classifies a message into one
// of the request types allowed for a domain and extracts its fields in the
// same round-trip.
func Classification(domain string, allowed []string, fieldDetails string) string {
	return "You classify employee requests and extract fields. " +
		"Return only a single JSON object with keys request_type and fields. " +
		"Do not include reasoning, code fences, or extra text. " +
		fmt.Sprintf("Domain: %s. ", domain) +
		fmt.Sprintf("request_type must be one of: %s. ", strings.Join(allowed, ", ")) +
		fmt.Sprintf("For each type, fields are: %s. ", fieldDetails) +
		"Use null for unknown values."
}

// Extraction builds the system prompt that pulls fields for one known
// request type out of a follow-up message.
func Extraction(requestType, fieldDesc string) string {
	return "You extract fields for a single request type. " +
		"Return only a single JSON object with keys request_type and fields. " +
		"Do not include reasoning, code fences, or extra text. " +
		fmt.Sprintf("request_type must be '%s'. ", requestType) +
		fmt.Sprintf("fields must include: %s. ", fieldDesc) +
		"Use null for unknown values."
}
