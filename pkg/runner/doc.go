/*
Package runner implements the conversation loop and I/O orchestration for the chatbot.

It is the bridge between the Bot facade and the outside world: it shows each reply,
reads the next answer through a pluggable handler, and stops when the conversation
reaches a verdict or ends.

# Key Components

  - Runner: the loop. End of input counts as an exit command.
  - IOHandler: decouples how replies are shown and answers are read.
  - TextHandler: interactive terminal I/O with a cancellable read pump.
  - JSONHandler: NDJSON I/O for scripted use.
  - SessionManager: resumes a stored session or starts a new one.

# Usage

	sm := runner.NewSessionManager(bot)
	session, opening, _, err := sm.LoadOrStart(ctx, sessionID)
	if err != nil {
		log.Fatal(err)
	}

	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)))
	if err := r.Run(ctx, bot, session, opening); err != nil {
		log.Fatal(err)
	}
*/
package runner
