package voice

import "fmt"

// AddressPlaceholder is used when an inbound lead carries no address; the
// prompt then refers to "your inquiry" instead of a property.
const AddressPlaceholder = "your inquiry"

const inboundPromptTemplate = `# IDENTITY
You are the AI assistant for a top real estate agency.
You are calling %s immediately because they just requested information about %s on our website.

# GOAL
Confirm they made the request and ask if they are looking to buy or sell.
Your goal is to get a live agent on the line if they are serious.

# OPENER
"Hi %s, this is Thavon calling from the real estate team. I saw you just requested an estimate for %s. Do you have a minute?"`

// InboundCallScript builds the speed-to-lead system prompt and opener for a
// lead that just came in through the website or a form integration.
func InboundCallScript(name, address string) (systemPrompt, firstMessage string) {
	if address == "" {
		address = AddressPlaceholder
	}

	systemPrompt = fmt.Sprintf(inboundPromptTemplate, name, address, name, address)
	firstMessage = fmt.Sprintf("Hi %s, this is the real estate team calling about your request. Do you have a minute?", name)
	return systemPrompt, firstMessage
}

// CampaignCallScript builds the prompt for planned outbound campaign calls
// against leads already in the database.
func CampaignCallScript(name, address string) (systemPrompt, firstMessage string) {
	if address == "" {
		address = "your property"
	}

	systemPrompt = fmt.Sprintf(
		"You are a Senior Agent calling %s about %s. Handle objections politely and book an appointment.",
		name, address,
	)
	firstMessage = fmt.Sprintf("Hi %s, this is Thavon from the real estate team. Do you have a quick minute to talk about %s?", name, address)
	return systemPrompt, firstMessage
}
