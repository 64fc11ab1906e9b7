// Package sqlpager provides bidirectional pagination over forward-only SQL
// cursors.
//
// Overview
//
// Most SQL client interfaces only fetch forward. QueryPaginator turns such a
// cursor into a next/previous pager:
//   - Forward: the next page is read straight from the cursor.
//   - Backward: the statement is executed again and every page before the
//     target one is read and discarded. Only one page is resident at a time,
//     a step back costs as many round-trips as pages were already visited.
//
// Key concepts
//   - Connection and Cursor: the consumed driver capabilities. GORMConnection
//     (sqlite, mysql, postgres dialectors) and PGXConnection implement them.
//   - Result shape: a statement either produced a result set (projection) or
//     only had an effect (insert, update, schema change). Effect statements
//     feed a single "Affected rows: N" or "Successfully executed!" row.
//   - Global row numbers: every fed row carries its 1-based position in the
//     whole result, identical however the page was reached.
//
// Usage
//
//	conn, err := sqlpager.Open(ctx, sqlpager.DriverSQLite, "file.db")
//	if err != nil {
//		return err
//	}
//	defer conn.Close(ctx)
//
//	p, err := sqlpager.NewQueryPaginator(ctx, conn, "SELECT * FROM orders", 50)
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	for row, err := range p.Feed(ctx, sqlpager.DirectionForward) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(row.Number, row.Row)
//	}
package sqlpager
