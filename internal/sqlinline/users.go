package sqlinline

const QInsertUser = `--sql 4435b109-7951-4f08-bec2-c70bd493a06d
insert into users(name, email, plan)
values ($1::text, nullif($2::text, ''), $3::text)
returning id, created_at, updated_at;
`

const QGetUserByID = `--sql 1b59d09c-f05e-4b42-8b9f-fee1fc86bd30
select id, name, coalesce(email, ''), plan, created_at, updated_at
from users
where id = $1::bigint
limit 1;
`

const QGetUserByEmail = `--sql b2f694ec-4313-4f32-8c02-1257123aa16a
select id, name, coalesce(email, ''), plan, created_at, updated_at
from users
where email = $1::text
limit 1;
`

const QUpdateUser = `--sql 9a7c11da-4b20-46de-93b9-1a9f6ad06c0f
update users
set name = coalesce($2::text, name),
    email = coalesce(nullif($3::text, ''), email),
    plan = coalesce($4::text, plan),
    updated_at = now()
where id = $1::bigint
returning id, name, coalesce(email, ''), plan, created_at, updated_at;
`

const QListUsers = `--sql 5b0a6f5c-8a54-4a6b-9c3e-7f25f0f2ad44
select id, name, coalesce(email, ''), plan, created_at, updated_at
from users
order by created_at desc, id desc
limit $1::int offset $2::int;
`

const QCountUsers = `--sql 0dfc3b3a-61cc-4a9d-8b4e-b3b1f4f9a7c2
select count(*) from users;
`
