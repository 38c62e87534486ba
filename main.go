package main

import "github.com/gregszewczyk/weekly-calorie-tracker-sub001/cmd/calbank"

func main() {
	calbank.Execute()
}
