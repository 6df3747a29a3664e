/*
Package chatbot is a terminal assistant that decides whether a person qualifies for a
vehicle product under three fixed rules: the driver is at least 18, the vehicle model
year is 2015 or later, and its mileage is below 100,000 km.

# Concept

A finite-state dialogue controller (pkg/dialogue) asks for one fact at a time, turns
free-text answers into typed values (pkg/extract), and runs a pure rule evaluator
(pkg/eligibility) once all three are known. Every step produces a structured Outcome;
a Renderer turns it into text, either from canned templates or through a local
language model with the templates as fallback. Every turn is appended to an encrypted
transcript store.

# Usage

	bot, err := chatbot.New(chatbot.WithStore(store))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	session, reply, err := bot.Start(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.Text)

	for _, answer := range []string{"25", "2020", "45.000 km"} {
		reply, err = bot.Send(ctx, session, answer)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(reply.Text)
	}

# Failure model

Answers that cannot be read are never errors: they yield a Clarify outcome and the
question is asked again. Store and model failures degrade to warnings and template
text. Only a broken dialogue invariant surfaces as an error from Send, and it aborts
that session alone.
*/
package chatbot
