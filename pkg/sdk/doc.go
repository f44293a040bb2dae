// Package reportscore embeds the report authenticity classifier in a Go
// program: score report text, retrain on a labeled corpus, check health.
//
// The model artifact lives in a local file or a Redis key, the same places the
// reportscore API server reads from.
//
//	client, _ := reportscore.New(ctx, reportscore.WithFileArtifact("data/model.rsca"))
//	defer client.Close()
//
//	v, err := client.Score(ctx, "someone promised a free meal for a transfer fee")
//	if errors.Is(err, reportscore.ErrClassifierUnavailable) {
//	    // no model trained yet
//	}
//	fmt.Println(v.Label, v.Confidence)
//
// # Retraining
//
//	res, _ := client.Retrain(ctx, examples, reportscore.DefaultTrainConfig())
//	fmt.Printf("model %s accuracy %.2f\n", res.ModelID, res.Accuracy)
//
// Retrain saves the new artifact and switches Score over to it.
package reportscore
