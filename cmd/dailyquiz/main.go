package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"dailyquiz"
)

func main() {
	var (
		configDir  = flag.String("config", ".", "Directory holding .env and dailyquiz.yaml")
		dbPath     = flag.String("db", "", "Database path (overrides config)")
		date       = flag.String("date", "", "Quiz date YYYY-MM-DD (default: today)")
		regenerate = flag.Bool("regenerate", false, "Discard the saved batch for the date and generate a new one")
		printOnly  = flag.Bool("print", false, "Print the batch as JSON instead of playing it")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	cfg, err := dailyquiz.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	dailyquiz.SetVerbose(*verbose || cfg.Verbose)
	defer dailyquiz.Logger().Sync()

	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *date == "" {
		*date = dailyquiz.Today(time.Now())
	} else if _, err := time.Parse(time.DateOnly, *date); err != nil {
		log.Fatalf("Invalid -date %q: %v", *date, err)
	}

	ctx := context.Background()

	store, err := dailyquiz.OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	llmLog := dailyquiz.NewLLMLogger(cfg.LLMLog)
	defer llmLog.Close()

	service := dailyquiz.NewQuizService(store, dailyquiz.NewQuestionMaker(cfg.AI, llmLog))

	if !*printOnly {
		fmt.Println("2Two: solve 2 aptitude + 2 technical questions daily!")
		fmt.Println("⏳ Loading today's questions... (this may take a moment)")
	}

	var batch []dailyquiz.Question
	if *regenerate {
		batch, err = service.Regenerate(ctx, *date)
	} else {
		batch, err = service.GetOrGenerateBatch(ctx, *date)
	}
	if err != nil {
		log.Fatalf("Failed to load questions: %v", err)
	}

	if *printOnly {
		output, err := json.MarshalIndent(batch, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal questions: %v", err)
		}
		fmt.Println(string(output))
		return
	}

	if err := playQuiz(ctx, service, batch, *date, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Quiz aborted: %v", err)
	}
}

func playQuiz(ctx context.Context, service *dailyquiz.QuizService, batch []dailyquiz.Question, date string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	sess := dailyquiz.StartSession(date, batch)

	fmt.Fprintf(out, "📝 Questions for %s: %d\n\n", date, len(batch))

	for sess.State != dailyquiz.StateComplete {
		q, err := sess.Current(batch)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Category: %s | Topic: %s\n", dailyquiz.TitleCase(q.Category), dailyquiz.TitleCase(q.SubCategory))
		fmt.Fprintf(out, "Q%d/%d: %s\n\n", sess.Index+1, sess.Total, q.Prompt)
		for _, opt := range q.Options {
			fmt.Fprintf(out, "%s) %s\n", opt.Key, opt.Text)
		}
		fmt.Fprintln(out)

		keys := strings.Join(q.Options.Keys(), "/")
		for sess.State == dailyquiz.StateAwaitingAnswer {
			fmt.Fprintf(out, "Your answer (%s): ", keys)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return err
				}
				return io.ErrUnexpectedEOF
			}
			choice := strings.ToUpper(strings.TrimSpace(scanner.Text()))

			if _, err := service.Submit(ctx, sess, batch, choice); err != nil {
				if !errors.Is(err, dailyquiz.ErrInvalidChoice) {
					return err
				}
				fmt.Fprintf(out, "Please enter one of %s\n", keys)
			}
		}

		last, _ := sess.LastAnswer()
		if last.Correct {
			fmt.Fprintln(out, "✅ Correct! Well done.")
		} else {
			fmt.Fprintf(out, "❌ Incorrect. The correct answer is %s.\n", q.CorrectOption)
		}
		fmt.Fprintf(out, "Correct Option: %s: %s\n", q.CorrectOption, q.CorrectText())
		if q.Explanation != "" {
			fmt.Fprintf(out, "💡 Explanation: %s\n", q.Explanation)
		}
		fmt.Fprintf(out, "Progress: %.0f%%\n", sess.Progress()*100)
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintln(out)

		if err := sess.Next(); err != nil {
			return err
		}
	}

	summary := dailyquiz.Summarize(batch, sess.Answers)
	fmt.Fprintln(out, "🎉 Quiz Completed! 🎉")
	fmt.Fprintf(out, "Your Score: %d/%d\n", summary.Score, summary.Total)
	fmt.Fprintln(out, "Summary:")
	for _, item := range summary.Items {
		fmt.Fprintf(out, "Q%d: %s\n", item.Question.ID, item.Question.Prompt)
		fmt.Fprintf(out, "Your answer: %s | Correct: %s\n", item.Choice, item.Question.CorrectOption)
		fmt.Fprintf(out, "Explanation: %s\n\n", item.Question.Explanation)
	}
	return nil
}
