package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"examscore/ml"
)

func main() {
	modelPath := flag.String("model_path", "./models/example_linear_regression.json", "model artifact path")
	defaults := ml.DefaultRecord()
	record := defaults
	flag.IntVar(&record.StudentID, "student_id", defaults.StudentID, "student id")
	flag.StringVar(&record.Course, "course", defaults.Course, "course")
	flag.StringVar(&record.StudyMethod, "study_method", defaults.StudyMethod, "study method")
	flag.IntVar(&record.StudyHours, "study_hours", defaults.StudyHours, "hours studied")
	flag.IntVar(&record.ClassAttendance, "class_attendance", defaults.ClassAttendance, "class attendance percentage")
	flag.StringVar(&record.InternetAccess, "internet_access", defaults.InternetAccess, "internet access (yes/no)")
	flag.IntVar(&record.SleepHours, "sleep_hours", defaults.SleepHours, "average sleep hours per night")
	flag.StringVar(&record.SleepQuality, "sleep_quality", defaults.SleepQuality, "sleep quality (poor/average/good)")
	flag.StringVar(&record.FacilityRating, "facility_rating", defaults.FacilityRating, "facility rating (low/medium/high)")
	flag.StringVar(&record.ExamDifficulty, "exam_difficulty", defaults.ExamDifficulty, "exam difficulty (easy/moderate/hard)")
	verbose := flag.Bool("v", false, "print the encoded feature row")
	flag.Parse()

	if err := record.Validate(); err != nil {
		log.Fatal(err)
	}

	store := ml.NewArtifactStore(*modelPath, nil)
	if err := store.Load(); err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	predictor, err := ml.NewPredictor(store)
	if err != nil {
		log.Fatalf("failed to create predictor: %v", err)
	}

	prediction, err := predictor.Predict(context.Background(), record)
	if err != nil {
		if errors.Is(err, ml.ErrMissingExpectedColumns) {
			fmt.Fprintln(os.Stderr, "Model does not contain its expected feature columns. Re-train saving the columns list.")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	if *verbose {
		row := prediction.Features
		values := row.Values()
		for i, name := range row.Names() {
			fmt.Printf("%-28s %g\n", name, values[i])
		}
	}
	fmt.Println(prediction.Display())
}
