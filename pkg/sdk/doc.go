// Package bookrec embeds the book recommender in a Go program.
//
// New loads the book and rating tables, builds the catalog and the
// item-item cosine similarity index once, and returns a read-only Client.
//
//	client, err := bookrec.New(ctx,
//	    bookrec.WithCSV("Books.csv", "Ratings.csv", ';'),
//	    bookrec.WithPriceSeed(42),
//	)
//	if err != nil {
//	    return err
//	}
//	recs, err := client.Recommend(ctx, "The Da Vinci Code", 5)
//	if errors.Is(err, bookrec.ErrNotFound) {
//	    // title unknown or not frequently rated enough
//	}
//
// Tables can also come from Parquet files (WithParquet), a SQLite database
// (WithSQLite) or any custom loader (WithSource).
package bookrec
