package dailyquiz

// SampleQuestions returns the fixed question set used whenever live
// generation produces nothing usable.
func SampleQuestions() []RawQuestion {
	return []RawQuestion{
		sample(CategoryAptitude, "Sequences & Series",
			"What is the next number in the sequence: 2, 4, 8, 16, ...",
			Options{{"A", "20"}, {"B", "24"}, {"C", "32"}, {"D", "48"}},
			"C",
			"This is a geometric progression where each term is twice the previous term, so the n-th term is 2^n. "+
				"The last term shown is 16, which is 2^4, so the next term is 2^5, which equals 32. Recognising a "+
				"constant ratio between consecutive terms is the quickest way to classify a sequence and is one of "+
				"the most common patterns tested in quantitative aptitude rounds."),
		sample(CategoryAptitude, "Probability",
			"What is the probability of rolling a 3 on a standard six-sided die?",
			Options{{"A", "1/2"}, {"B", "1/6"}, {"C", "1/3"}, {"D", "1/12"}},
			"B",
			"Probability is the number of favourable outcomes divided by the total number of possible outcomes. "+
				"A standard die has six equally likely faces numbered 1 to 6, and exactly one of them shows a 3. "+
				"The probability is therefore 1/6. This is the simplest case of a discrete uniform distribution, "+
				"where every outcome carries the same weight."),
		sample(CategoryTechnical, "Data Structures",
			"Which data structure uses LIFO (Last-In, First-Out) ordering?",
			Options{{"A", "Queue"}, {"B", "Stack"}, {"C", "Linked List"}, {"D", "Heap"}},
			"B",
			"A stack keeps its elements in last-in, first-out order. Like a stack of plates, items are only added "+
				"to and removed from the top, through the push and pop operations. A queue is first-in, first-out, "+
				"and neither a linked list nor a heap imposes LIFO order. Stacks back function call frames and the "+
				"evaluation of nested expressions."),
		sample(CategoryTechnical, "Operating Systems",
			"What is a deadlock?",
			Options{
				{"A", "A process waiting for I/O"},
				{"B", "Two processes waiting for each other indefinitely"},
				{"C", "A process that has finished execution"},
				{"D", "A system crash due to low memory"},
			},
			"B",
			"A deadlock is a state in which two or more processes can never proceed because each one waits for a "+
				"resource held by another. It requires four conditions at once: mutual exclusion, hold and wait, no "+
				"preemption and circular wait. Waiting for I/O is an ordinary blocked state that ends when the "+
				"device responds, so it is not a deadlock."),
	}
}

func sample(category, subCategory, question string, options Options, answer, explanation string) RawQuestion {
	return RawQuestion{
		Type:        &category,
		SubCategory: &subCategory,
		Question:    &question,
		Options:     options,
		Answer:      &answer,
		Explanation: &explanation,
	}
}
