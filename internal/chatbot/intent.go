package chatbot

import (
	"regexp"
	"strings"
)

// Intent classifies the purpose of a visitor message.
type Intent string

const (
	IntentGreeting      Intent = "greeting"
	IntentGoodbye       Intent = "goodbye"
	IntentEmergency     Intent = "emergency"
	IntentQuoteRequest  Intent = "quote_request"
	IntentPricing       Intent = "pricing"
	IntentContact       Intent = "contact"
	IntentLocation      Intent = "location"
	IntentTimeline      Intent = "timeline"
	IntentWaterproofing Intent = "waterproofing"
	IntentPainting      Intent = "painting"
	IntentConstruction  Intent = "construction"
	IntentRemodeling    Intent = "remodeling"
	IntentServices      Intent = "services"
	IntentUnknown       Intent = "unknown"
)

type intentMatcher struct {
	intent  Intent
	pattern *regexp.Regexp
}

// intentMatchers is evaluated in order; the first matching pattern wins.
// Greeting and goodbye come before the domain intents, and emergency before
// quote/pricing, so urgent wording is never swallowed by a generic match.
var intentMatchers = []intentMatcher{
	{IntentGreeting, regexp.MustCompile(`(?i)(\bhi\b|\bhello\b|\bhey\b|good morning|good afternoon|good evening)`)},
	{IntentGoodbye, regexp.MustCompile(`(?i)(\bbye\b|goodbye|see you|talk later|thanks|thank you)`)},
	{IntentEmergency, regexp.MustCompile(`(?i)(emergency|urgent|flood|water damage|leak now|asap)`)},
	{IntentQuoteRequest, regexp.MustCompile(`(?i)(quote|request a quote|estimate|free estimate|need a quote)`)},
	{IntentPricing, regexp.MustCompile(`(?i)(price|pricing|cost|budget|rate)`)},
	{IntentContact, regexp.MustCompile(`(?i)(contact|phone|call|email|reach you|number)`)},
	{IntentLocation, regexp.MustCompile(`(?i)(location|address|where are you|where located|office)`)},
	{IntentTimeline, regexp.MustCompile(`(?i)(timeline|how long|start date|when can you start|availability)`)},
	{IntentWaterproofing, regexp.MustCompile(`(?i)(waterproof|basement|roof sealing|wall sealing|window sealing)`)},
	{IntentPainting, regexp.MustCompile(`(?i)(painting|interior paint|exterior paint|commercial painting)`)},
	{IntentConstruction, regexp.MustCompile(`(?i)(construction|foundation|framing|concrete|general contracting|build)`)},
	{IntentRemodeling, regexp.MustCompile(`(?i)(remodel|renovation|kitchen|bathroom|interior upgrades)`)},
	{IntentServices, regexp.MustCompile(`(?i)(services|what do you do|offerings|solutions)`)},
}

// DetectIntent maps raw visitor text to exactly one intent. It is a total
// function: empty or unmatched input returns IntentUnknown, never an error.
func DetectIntent(message string) Intent {
	text := strings.TrimSpace(message)
	if text == "" {
		return IntentUnknown
	}
	for _, m := range intentMatchers {
		if m.pattern.MatchString(text) {
			return m.intent
		}
	}
	return IntentUnknown
}
