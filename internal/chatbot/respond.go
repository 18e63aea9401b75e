package chatbot

import (
	"fmt"
	"strings"
)

// ResponseFor returns the canned reply for an intent. It is a pure, total
// mapping: unknown intents get a clarifying prompt, never an error.
func ResponseFor(intent Intent, kb *KnowledgeBase) string {
	switch intent {
	case IntentGreeting:
		return "Hello 👋 Welcome to KAS Waterproofing & Building Services. How can we help with your project today?"
	case IntentServices:
		return "We provide professional Construction, Waterproofing, Painting and Remodeling services for residential and commercial properties."
	case IntentPricing:
		return "Pricing depends on project size and requirements. We offer FREE estimates after a quick consultation."
	case IntentQuoteRequest:
		return "I can help you request a free quote. May I get your name?"
	case IntentLocation:
		return fmt.Sprintf("We are located at\n📍 %s\nWe serve all South Florida areas.", kb.Location)
	case IntentContact:
		return fmt.Sprintf("You can reach us directly:\n📞 %s\n📧 %s", kb.Phone, kb.Email)
	case IntentTimeline:
		return "Project timelines depend on scope, but most projects start within a few days after approval."
	case IntentWaterproofing:
		return "We specialize in roof waterproofing, basement waterproofing, wall sealing and window sealing."
	case IntentPainting:
		return "We provide interior, exterior and commercial painting with professional surface preparation."
	case IntentConstruction:
		return "We handle foundation work, framing, concrete work and general contracting."
	case IntentRemodeling:
		return "We offer kitchen, bathroom and interior remodeling services."
	case IntentEmergency:
		return fmt.Sprintf("If you have urgent water damage, please call us immediately at %s.", kb.Phone)
	case IntentGoodbye:
		return "Thank you for contacting KAS. We look forward to working with you!"
	default:
		return "I'm happy to help! Could you please provide more details about your project?"
	}
}

// dialogue prompts used by the quote-collection flow

func askPhonePrompt(name string) string {
	return fmt.Sprintf("Thanks %s! What's the best phone number to reach you?", name)
}

func rePromptPhone() string {
	return "That doesn't look like a complete phone number. Could you share a number with at least 7 digits?"
}

func askServicePrompt(kb *KnowledgeBase) string {
	return fmt.Sprintf("Got it. Which service are you interested in? We offer: %s.", strings.Join(kb.Services, ", "))
}

func leadConfirmation(name string, kb *KnowledgeBase) string {
	return fmt.Sprintf("Thank you %s! Your free quote request has been received. Our team will call you shortly. For anything urgent, reach us at %s.", name, kb.Phone)
}

func fallbackReply(kb *KnowledgeBase) string {
	return fmt.Sprintf("Sorry, we ran into a technical issue on our side. Please call us at %s and we'll take care of you right away.", kb.Phone)
}
