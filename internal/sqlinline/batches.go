package sqlinline

const QInsertBatch = `--sql dba84bc5-e82e-4256-a0aa-485dba91fb32
insert into batch_try_on_results(batch_id, user_id, user_image_path, total_outfits, completed_count, status, results)
values ($1::text, $2::bigint, $3::text, $4::int, 0, 'processing', '[]'::jsonb)
returning id, created_at, updated_at;
`

const QGetBatchByBatchID = `--sql 87daf94b-7ab4-4582-a9bf-ed4c8ee1683d
select id, batch_id, user_id, user_image_path, total_outfits, completed_count, status, results, created_at, updated_at
from batch_try_on_results
where batch_id = $1::text
limit 1;
`

// QAppendBatchResult appends one result and advances the counter in a single
// statement, so concurrent readers always observe the record either before or
// after the whole step and two appends can never race.
const QAppendBatchResult = `--sql b426b410-2963-4e0b-8bfb-59da98bddc71
update batch_try_on_results
set results = results || $2::jsonb,
    completed_count = completed_count + 1,
    status = case
      when completed_count + 1 >= total_outfits then 'completed'
      else status
    end,
    updated_at = now()
where batch_id = $1::text;
`

const QSetBatchStatus = `--sql e04d7f84-c908-439f-a702-f8afc43748f9
update batch_try_on_results
set status = $2::text, updated_at = now()
where batch_id = $1::text;
`

const QInsertTryOnResult = `--sql 9238928a-884c-4b42-a270-a13727a4c390
insert into try_on_results(user_id, outfit_id, result_image_url, task_id)
values ($1::bigint, $2::bigint, $3::text, nullif($4::text, ''))
returning id;
`

const QListRecentResultsByUser = `--sql 63414fd1-c67d-4054-b2bc-a39618a561bf
select r.id, r.user_id, r.outfit_id, r.result_image_url, coalesce(r.task_id, ''), r.created_at,
       o.id, o.category_id, o.name, o.description, o.image_url, o.cloth_type, o.price, o.is_active, o.created_at
from try_on_results r
join outfits o on o.id = r.outfit_id
where r.user_id = $1::bigint
order by r.created_at desc
limit $2::int;
`

const QCountResultsByUser = `--sql 5e798f77-2987-4ee6-9b34-2c74e563df73
select count(*)
from try_on_results
where user_id = $1::bigint;
`

const QCountResultsByUserSince = `--sql dd6aa92d-6ba7-454f-ab7f-4cd19f8f80a1
select count(*)
from try_on_results
where user_id = $1::bigint and created_at >= $2::timestamptz;
`

const QFavoriteOutfitByUser = `--sql 3e86efff-78f9-407b-9631-95cf1f6a99dc
select o.id, o.category_id, o.name, o.description, o.image_url, o.cloth_type, o.price, o.is_active, o.created_at,
       count(*) as try_on_count
from try_on_results r
join outfits o on o.id = r.outfit_id
where r.user_id = $1::bigint
group by o.id, o.category_id, o.name, o.description, o.image_url, o.cloth_type, o.price, o.is_active, o.created_at
order by try_on_count desc, o.id
limit 1;
`
